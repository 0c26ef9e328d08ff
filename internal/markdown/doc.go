// Package markdown discovers markdown files, decodes their YAML front matter
// and renders bodies to HTML with goldmark. It is shared by the blog post
// seeder and the documentation snapshotter.
package markdown
