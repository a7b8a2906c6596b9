package analyzer

import (
	"fmt"

	"github.com/example/yulc/internal/surface"
)

// linearizeMixins flattens `extends Mixin(A, B, C)` into a single merged
// class: properties and methods are concatenated in mixin declaration
// order, own-class members last, and a name repeated by a later source
// overrides the earlier one IN PLACE so storage slot order (which walks
// the merged list positionally) is not disturbed by the override (spec
// §1: "mixins compose by name, with later mixins overriding earlier
// ones; there is no virtual dispatch").
func linearizeMixins(prog *surface.Program, cls *surface.Class) (*surface.Class, error) {
	merged := &surface.Class{
		Name:       cls.Name,
		Decorators: cls.Decorators,
		Exported:   cls.Exported,
	}

	propIndex := map[string]int{}
	methodIndex := map[string]int{}

	apply := func(src *surface.Class) {
		for _, p := range src.Properties {
			if i, ok := propIndex[p.Name]; ok {
				merged.Properties[i] = p
				continue
			}
			propIndex[p.Name] = len(merged.Properties)
			merged.Properties = append(merged.Properties, p)
		}
		for _, m := range src.Methods {
			if i, ok := methodIndex[m.Name]; ok {
				merged.Methods[i] = m
				continue
			}
			methodIndex[m.Name] = len(merged.Methods)
			merged.Methods = append(merged.Methods, m)
		}
	}

	seen := map[string]bool{cls.Name: true}
	for _, mixinName := range cls.Mixins {
		if seen[mixinName] {
			return nil, fmt.Errorf("mixin cycle or duplicate mixin: %s", mixinName)
		}
		seen[mixinName] = true
		mixinCls, ok := findClass(prog, mixinName)
		if !ok {
			return nil, fmt.Errorf("unknown mixin: %s", mixinName)
		}
		resolved, err := linearizeMixins(prog, mixinCls)
		if err != nil {
			return nil, err
		}
		apply(resolved)
	}
	apply(cls)

	return merged, nil
}

func findClass(prog *surface.Program, name string) (*surface.Class, bool) {
	for i := range prog.Classes {
		if prog.Classes[i].Name == name {
			return &prog.Classes[i], true
		}
	}
	return nil, false
}
