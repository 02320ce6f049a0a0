// Package render превращает JSON-значение из запроса в текст, который затем сжимается.
//
// Поддерживаются два режима:
//   - json: компактный стандартный JSON с сохранением порядка ключей;
//   - repr: отладочное представление в стиле Python (`{'a': 1}`), совместимое
//     со старой версией сервиса.
package render

import (
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"
)

// Mode — режим канонического представления.
type Mode string

const (
	ModeJSON Mode = "json"
	ModeRepr Mode = "repr"
)

// ErrInvalidJSON возвращается, если входные данные не являются корректным JSON.
var ErrInvalidJSON = errors.New("invalid JSON value")

var api = jsoniter.Config{EscapeHTML: false}.Froze()

// ParseMode разбирает строковое имя режима. Пустая строка означает ModeJSON.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeJSON:
		return ModeJSON, nil
	case ModeRepr:
		return ModeRepr, nil
	default:
		return "", errors.Newf("unknown render mode %q", s)
	}
}

// Render возвращает каноническое представление raw в указанном режиме.
func Render(mode Mode, raw []byte) ([]byte, error) {
	switch mode {
	case ModeJSON, "":
		return renderJSON(raw)
	case ModeRepr:
		return renderRepr(raw)
	default:
		return nil, errors.Newf("unknown render mode %q", mode)
	}
}

func renderJSON(raw []byte) ([]byte, error) {
	iter := api.BorrowIterator(raw)
	defer api.ReturnIterator(iter)
	stream := api.BorrowStream(nil)
	defer api.ReturnStream(stream)

	if err := walk(iter, &jsonEmitter{stream: stream}); err != nil {
		return nil, err
	}
	if stream.Error != nil {
		return nil, errors.Wrap(stream.Error, "write JSON")
	}

	// Буфер принадлежит пулу, поэтому его нужно скопировать.
	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

func renderRepr(raw []byte) ([]byte, error) {
	iter := api.BorrowIterator(raw)
	defer api.ReturnIterator(iter)

	// str() от строки верхнего уровня в Python возвращает её без кавычек.
	if iter.WhatIsNext() == jsoniter.StringValue {
		s := iter.ReadString()
		if err := finish(iter); err != nil {
			return nil, err
		}
		return []byte(s), nil
	}

	e := &reprEmitter{}
	if err := walk(iter, e); err != nil {
		return nil, err
	}
	return e.buf.Bytes(), nil
}

// walk обходит одно JSON-значение, передавая токены эмиттеру в исходном порядке.
// После значения во входе допускаются только пробельные символы.
func walk(iter *jsoniter.Iterator, e emitter) error {
	walkValue(iter, e)
	return finish(iter)
}

func walkValue(iter *jsoniter.Iterator, e emitter) {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		if d, ok := e.(deduper); ok {
			walkObjectLastWins(iter, d)
			return
		}
		e.objectStart()
		first := true
		closed := iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			if !first {
				e.more()
			}
			first = false
			e.key(key)
			walkValue(it, e)
			return it.Error == nil
		})
		checkClosed(iter, closed)
		e.objectEnd()
	case jsoniter.ArrayValue:
		e.arrayStart()
		first := true
		closed := iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			if !first {
				e.more()
			}
			first = false
			walkValue(it, e)
			return it.Error == nil
		})
		checkClosed(iter, closed)
		e.arrayEnd()
	case jsoniter.StringValue:
		e.str(iter.ReadString())
	case jsoniter.NumberValue:
		e.number(string(iter.ReadNumber()))
	case jsoniter.BoolValue:
		e.boolean(iter.ReadBool())
	case jsoniter.NilValue:
		iter.ReadNil()
		e.null()
	default:
		iter.ReportError("render", "unexpected token")
	}
}

// walkObjectLastWins обходит объект так, как его собрал бы dict:
// повторный ключ остаётся на месте первого, но получает последнее значение.
func walkObjectLastWins(iter *jsoniter.Iterator, d deduper) {
	var keys []string
	values := make(map[string][]byte)
	closed := iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
		sub := d.child()
		walkValue(it, sub)
		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}
		values[key] = sub.bytes()
		return it.Error == nil
	})
	checkClosed(iter, closed)

	d.objectStart()
	for i, key := range keys {
		if i > 0 {
			d.more()
		}
		d.key(key)
		d.raw(values[key])
	}
	d.objectEnd()
}

// checkClosed превращает обрыв входа внутри объекта или массива в ошибку.
// Сам jsoniter в этом случае оставляет только io.EOF.
func checkClosed(iter *jsoniter.Iterator, closed bool) {
	if !closed && (iter.Error == nil || iter.Error == io.EOF) {
		iter.ReportError("render", "unexpected end of input")
	}
}

// finish проверяет ошибку разбора и отсутствие данных после значения.
// io.EOF после полностью прочитанного значения верхнего уровня не ошибка:
// так jsoniter завершает число в конце буфера.
func finish(iter *jsoniter.Iterator) error {
	if iter.Error == nil {
		if iter.WhatIsNext() != jsoniter.InvalidValue || iter.Error == nil {
			iter.ReportError("render", "unexpected data after value")
		}
	}
	if iter.Error == nil || iter.Error == io.EOF {
		return nil
	}
	return errors.Mark(errors.Wrap(iter.Error, "parse data"), ErrInvalidJSON)
}

type emitter interface {
	objectStart()
	objectEnd()
	arrayStart()
	arrayEnd()
	key(k string)
	more()
	str(s string)
	number(n string)
	boolean(b bool)
	null()
}

// deduper реализуют эмиттеры, которым нужна семантика dict для повторных ключей.
type deduper interface {
	emitter
	child() deduper
	bytes() []byte
	raw(b []byte)
}

type jsonEmitter struct {
	stream *jsoniter.Stream
}

func (e *jsonEmitter) objectStart()    { e.stream.WriteObjectStart() }
func (e *jsonEmitter) objectEnd()      { e.stream.WriteObjectEnd() }
func (e *jsonEmitter) arrayStart()     { e.stream.WriteArrayStart() }
func (e *jsonEmitter) arrayEnd()       { e.stream.WriteArrayEnd() }
func (e *jsonEmitter) key(k string)    { e.stream.WriteObjectField(k) }
func (e *jsonEmitter) more()           { e.stream.WriteMore() }
func (e *jsonEmitter) str(s string)    { e.stream.WriteString(s) }
func (e *jsonEmitter) number(n string) { e.stream.WriteRaw(n) }
func (e *jsonEmitter) boolean(b bool)  { e.stream.WriteBool(b) }
func (e *jsonEmitter) null()           { e.stream.WriteNil() }
