package typedesc

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Resolver looks up a record type by name while parsing type expressions.
type Resolver func(name string) (Type, bool)

var ErrUnknownType = errors.New("unknown type")

var primitiveNames = map[string]Type{
	"int":      Int,
	"float":    Float,
	"str":      String,
	"string":   String,
	"bool":     Bool,
	"bytes":    Bytes,
	"duration": Duration,
	"time":     Time,
	"uuid":     UUID,
}

var containerNames = map[string]ContainerEnum{
	"list":      ContainerList,
	"tuple":     ContainerTuple,
	"set":       ContainerSet,
	"frozenset": ContainerFrozenSet,
	"dict":      ContainerDict,
}

// Parse parses a type expression.
// Supports: "int", "list[int]", "dict[str, list[float]]", "list", "list[~T]",
// and record names resolved through resolve (which may be nil).
func Parse(expr string, resolve Resolver) (Type, error) {
	p := &parser{src: expr, resolve: resolve}

	t, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("invalid type %q: %w", expr, err)
	}

	p.skipSpace()

	if p.pos != len(p.src) {
		return nil, fmt.Errorf("invalid type %q: unexpected %q at offset %d", expr, p.src[p.pos:], p.pos)
	}

	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(expr string, resolve Resolver) Type {
	t, err := Parse(expr, resolve)
	if err != nil {
		panic(err)
	}

	return t
}

type parser struct {
	src     string
	pos     int
	resolve Resolver
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) peek() byte {
	p.skipSpace()

	if p.pos >= len(p.src) {
		return 0
	}

	return p.src[p.pos]
}

func (p *parser) ident() (string, error) {
	p.skipSpace()

	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		p.pos++
	}

	if start == p.pos {
		if p.pos >= len(p.src) {
			return "", errors.New("unexpected end of expression")
		}

		return "", fmt.Errorf("expected identifier at offset %d", p.pos)
	}

	return p.src[start:p.pos], nil
}

func (p *parser) parseType() (Type, error) {
	if p.peek() == '~' {
		p.pos++

		name, err := p.ident()
		if err != nil {
			return nil, err
		}

		return Placeholder{Name: name}, nil
	}

	name, err := p.ident()
	if err != nil {
		return nil, err
	}

	container, isContainer := containerNames[strings.ToLower(name)]
	if !isContainer {
		if p.peek() == '[' {
			return nil, fmt.Errorf("type %q does not take arguments", name)
		}

		if t, ok := primitiveNames[strings.ToLower(name)]; ok {
			return t, nil
		}

		if p.resolve != nil {
			if t, ok := p.resolve(name); ok {
				return t, nil
			}
		}

		return nil, fmt.Errorf("%w: %s", ErrUnknownType, name)
	}

	if p.peek() != '[' {
		return Generic{Container: container}, nil
	}

	p.pos++

	var args []Type

	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		switch p.peek() {
		case ',':
			p.pos++
			continue
		case ']':
			p.pos++
		default:
			return nil, fmt.Errorf("expected ',' or ']' at offset %d", p.pos)
		}

		break
	}

	if container == ContainerDict {
		if len(args) != 2 {
			return nil, fmt.Errorf("dict takes 2 type arguments, got %d", len(args))
		}

		return Mapping{Key: args[0], Value: args[1]}, nil
	}

	if len(args) != 1 {
		return nil, fmt.Errorf("%s takes 1 type argument, got %d", container, len(args))
	}

	return Sequence{Container: container, Elem: args[0]}, nil
}
