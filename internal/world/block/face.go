package block

import (
	"fmt"
	"strings"
)

// Face – сторона блока, по которой пришлось взаимодействие
type Face uint8

const (
	FaceNone Face = iota
	FaceNorth
	FaceEast
	FaceSouth
	FaceWest
	FaceUp
	FaceDown
)

var faceNames = [...]string{"none", "north", "east", "south", "west", "up", "down"}

func (f Face) String() string {
	if int(f) < len(faceNames) {
		return faceNames[f]
	}
	return fmt.Sprintf("face(%d)", uint8(f))
}

// ParseFace разбирает название стороны
func ParseFace(s string) (Face, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FaceNone, nil
	}
	for i, name := range faceNames {
		if name == s {
			return Face(i), nil
		}
	}
	return FaceNone, fmt.Errorf("неизвестная сторона блока: %q", s)
}

// IsHorizontal – одна из четырёх сторон света
func (f Face) IsHorizontal() bool {
	return f == FaceNorth || f == FaceEast || f == FaceSouth || f == FaceWest
}

// RotationSuffix возвращает суффикс ориентации варианта блока.
// Стороны света дают "-north"/"-south"/"-east"/"-west", остальные – "-ud".
func (f Face) RotationSuffix() string {
	if f.IsHorizontal() {
		return "-" + f.String()
	}
	return "-ud"
}

// MarshalText / UnmarshalText – для JSON и YAML
func (f Face) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Face) UnmarshalText(text []byte) error {
	parsed, err := ParseFace(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
