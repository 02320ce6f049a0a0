package codec

import (
	"sort"

	"github.com/samber/lo"
)

// Registry хранит кодеки по имени. После создания не изменяется.
type Registry struct {
	codecs map[string]Codec
}

// NewRegistry создаёт реестр из переданных кодеков.
// При совпадении имён побеждает последний.
func NewRegistry(codecs ...Codec) *Registry {
	return &Registry{
		codecs: lo.SliceToMap(codecs, func(c Codec) (string, Codec) {
			return c.Name(), c
		}),
	}
}

// Lookup возвращает кодек по имени.
func (r *Registry) Lookup(name string) (Codec, bool) {
	c, ok := r.codecs[name]
	return c, ok
}

// Names возвращает отсортированный список имён зарегистрированных кодеков.
func (r *Registry) Names() []string {
	names := lo.Keys(r.codecs)
	sort.Strings(names)
	return names
}

// ByContentEncoding ищет кодек по значению заголовка Content-Encoding.
func (r *Registry) ByContentEncoding(encoding string) (Codec, bool) {
	return lo.Find(lo.Values(r.codecs), func(c Codec) bool {
		return c.ContentEncoding() == encoding
	})
}
