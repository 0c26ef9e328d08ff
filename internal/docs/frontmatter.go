package docs

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// FrontMatter is the optional YAML header of a documentation page.
type FrontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Order       *int   `yaml:"order"`
	Hidden      bool   `yaml:"hidden"`
	TOC         *bool  `yaml:"toc"`
}

func (fm FrontMatter) Validate() error {
	return validation.ValidateStruct(&fm,
		validation.Field(&fm.Title, validation.Length(0, 200)),
		validation.Field(&fm.Order, validation.Min(0)),
	)
}
