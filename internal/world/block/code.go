package block

import (
	"strings"

	"github.com/annel0/resinfarm/internal/world/item"
)

// Code – идентификатор типа блока вида "domain:path" (game:log-barked-oak-ud)
type Code struct {
	Domain string
	Path   string
}

// ParseCode разбирает строку кода. Домен по умолчанию – item.DefaultDomain.
func ParseCode(s string) Code {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return Code{Domain: s[:i], Path: s[i+1:]}
	}
	return Code{Domain: item.DefaultDomain, Path: s}
}

func (c Code) String() string {
	if c.Path == "" {
		return ""
	}
	return c.Domain + ":" + c.Path
}

// FirstPart возвращает путь без последнего сегмента "-..."
// ("log-barked-oak-ud" -> "log-barked-oak").
func (c Code) FirstPart() string {
	i := strings.LastIndexByte(c.Path, '-')
	if i < 0 {
		return c.Path
	}
	return c.Path[:i]
}
