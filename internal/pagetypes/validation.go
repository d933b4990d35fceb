package pagetypes

import (
	"errors"
	"fmt"
	"regexp"

	"sitetree/internal/config"
	"sitetree/internal/domain/models/sitetree"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var typeNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\\]*$`)

// validateTable checks names, parent references, excluded_children references
// and that the parent chain of every type terminates.
func validateTable(types []sitetree.PageType) error {
	if len(types) == 0 {
		return errors.New("page type table is empty")
	}

	known := make(map[string]*sitetree.PageType, len(types))
	for i := range types {
		pt := &types[i]
		err := validation.ValidateStruct(pt,
			validation.Field(&pt.Name,
				validation.Required,
				validation.Length(1, config.MaxPageTypeNameLength),
				validation.Match(typeNamePattern).Error("must be a valid type name"),
			),
		)
		if err != nil {
			return fmt.Errorf("page type #%d: %w", i+1, err)
		}
		if _, dup := known[pt.Name]; dup {
			return fmt.Errorf("duplicate page type %s", pt.Name)
		}
		known[pt.Name] = pt
	}

	isKnown := validation.By(func(value interface{}) error {
		name, _ := value.(string)
		if name == "" {
			return nil
		}
		if _, ok := known[name]; !ok {
			return fmt.Errorf("unknown page type %s", name)
		}
		return nil
	})

	for i := range types {
		pt := &types[i]
		err := validation.ValidateStruct(pt,
			validation.Field(&pt.Parent,
				isKnown,
				validation.NotIn(pt.Name).Error("cannot be its own parent"),
			),
			validation.Field(&pt.ExcludedChildren, validation.Each(isKnown)),
		)
		if err != nil {
			return fmt.Errorf("page type %s: %w", pt.Name, err)
		}
	}

	for _, pt := range types {
		seen := map[string]struct{}{pt.Name: {}}
		for parent := pt.Parent; parent != ""; parent = known[parent].Parent {
			if _, loop := seen[parent]; loop {
				return fmt.Errorf("page type %s: inheritance cycle through %s", pt.Name, parent)
			}
			seen[parent] = struct{}{}
		}
	}

	return nil
}
