package implementations

import "github.com/annel0/resinfarm/internal/world/block"

// RegisterDefaults регистрирует все классы поведений этого пакета
func RegisterDefaults(r *block.BehaviorRegistry) {
	r.Register(BarkCuttableName, NewBarkCuttable)
}
