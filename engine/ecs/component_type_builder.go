package ecs

// ComponentTypeOption configures a ComponentType at registration.
type ComponentTypeOption func(*ComponentType)

// WithSingleton marks the type as one-per-context. Singletons live on the context's global entity.
func WithSingleton() ComponentTypeOption {
	return func(t *ComponentType) {
		t.singleton = true
		t.allowMultiple = false
	}
}

// WithAbstract marks the type as a base that cannot be instantiated.
func WithAbstract() ComponentTypeOption {
	return func(t *ComponentType) {
		t.abstract = true
	}
}

// WithAllowMultiple lets an entity carry more than one instance of the type.
func WithAllowMultiple() ComponentTypeOption {
	return func(t *ComponentType) {
		if !t.singleton {
			t.allowMultiple = true
		}
	}
}

// WithBehaviour marks the type as a behaviour that receives lifecycle and render hooks.
func WithBehaviour() ComponentTypeOption {
	return func(t *ComponentType) {
		t.behaviour = true
	}
}

// WithExecuteInEditMode lets a behaviour's hooks run while the player is in editor mode.
func WithExecuteInEditMode() ComponentTypeOption {
	return func(t *ComponentType) {
		t.executeInEditMode = true
	}
}

// WithRequires declares component types that are auto-added before this one.
//
// Parameters:
//   - others: the required component types
//
// Returns:
//   - ComponentTypeOption: option function to apply
func WithRequires(others ...*ComponentType) ComponentTypeOption {
	return func(t *ComponentType) {
		for _, o := range others {
			dup := false
			for _, req := range t.requires {
				if req == o {
					dup = true
					break
				}
			}
			if !dup {
				t.requires = append(t.requires, o)
			}
		}
	}
}

// WithBase declares the type's parent for matchDerived lookups.
func WithBase(base *ComponentType) ComponentTypeOption {
	return func(t *ComponentType) {
		t.base = base
	}
}
