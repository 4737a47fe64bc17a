package block

import "github.com/annel0/resinfarm/internal/vec"

// Block – конкретный блок мира с атрибутами варианта (wood, rotation...)
type Block struct {
	Code    Code
	Variant map[string]string
}

// VariantValue возвращает значение атрибута варианта или ""
func (b Block) VariantValue(key string) string {
	if b.Variant == nil {
		return ""
	}
	return b.Variant[key]
}

// Selection – цель взаимодействия: позиция блока и сторона
type Selection struct {
	Position vec.Vec3 `json:"position"`
	Face     Face     `json:"face"`
}

// BlockType – тип блока с упорядоченным списком поведений.
// Поведения опрашиваются по порядку, первое не-PassThrough забирает взаимодействие.
type BlockType struct {
	Code      Code
	Variant   map[string]string
	Behaviors []InteractionBehavior
}

// Block создаёт экземпляр блока этого типа
func (bt *BlockType) Block() Block {
	return Block{Code: bt.Code, Variant: bt.Variant}
}

// AddBehavior добавляет поведение в конец списка
func (bt *BlockType) AddBehavior(b InteractionBehavior) {
	bt.Behaviors = append(bt.Behaviors, b)
}
