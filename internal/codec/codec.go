// Package codec сериализует коллекции сущностей в JSON и YAML.
//
// Это единственное место, которое знает о различиях форматов.
// Decode — жёсткая предпроверка: синтаксически невалидный текст
// отклоняется с ErrDecode до любой бизнес-валидации. Закон
// round-trip: decode(encode(E, f), f) семантически равен E
// (порядок полей и незначащие пробелы могут отличаться).
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Ensemble/internal/domain"
)

// Format — формат сериализации.
type Format string

// Поддерживаемые форматы.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Ошибки кодека.
var (
	// ErrDecode — текст синтаксически невалиден для формата.
	ErrDecode = errors.New("decode failed")

	// ErrUnsupportedFormat — формат не из множества {json, yaml}.
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// ParseFormat разбирает строку формата. Формат всегда объявляется
// явно — по расширению файла или содержимому он не угадывается.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Decode разбирает текст в произвольную структуру.
func Decode(text []byte, f Format) (any, error) {
	var data any
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(text))
		if err := dec.Decode(&data); err != nil {
			return nil, fmt.Errorf("%w: invalid json: %v", ErrDecode, err)
		}
		// Decode останавливается на первом значении; документ с
		// хвостом после него синтаксически невалиден целиком.
		if err := dec.Decode(new(any)); err != io.EOF {
			return nil, fmt.Errorf("%w: invalid json: trailing data after top-level value", ErrDecode)
		}
	case FormatYAML:
		// yaml.v3 сам отклоняет дубликаты ключей.
		if err := yaml.Unmarshal(text, &data); err != nil {
			return nil, fmt.Errorf("%w: invalid yaml: %v", ErrDecode, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
	return data, nil
}

// Items нормализует разобранные данные в список объектов.
//
// Допустимые обёртки:
//   - голый список: [{...}, ...]
//   - {"items": [...]}
//   - {<kindKey>: [...]} — например {"agents": [...]}
//   - одиночный объект: {...} — трактуется как список из одного
func Items(data any, kindKey string) ([]map[string]any, error) {
	if data == nil {
		return nil, fmt.Errorf("%w: payload is empty", ErrDecode)
	}

	var list []any
	switch v := data.(type) {
	case []any:
		list = v
	case map[string]any:
		if inner, ok := v[kindKey]; ok {
			wrapped, ok := inner.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: %q must be a list", ErrDecode, kindKey)
			}
			list = wrapped
		} else if inner, ok := v["items"]; ok {
			wrapped, ok := inner.([]any)
			if !ok {
				return nil, fmt.Errorf("%w: \"items\" must be a list", ErrDecode)
			}
			list = wrapped
		} else {
			list = []any{v}
		}
	default:
		return nil, fmt.Errorf("%w: payload must be a list or object", ErrDecode)
	}

	items := make([]map[string]any, len(list))
	for i, raw := range list {
		obj, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item at index %d must be an object", ErrDecode, i)
		}
		items[i] = obj
	}
	return items, nil
}

// DecodeAgents разбирает текст в список агентов.
func DecodeAgents(text []byte, f Format) ([]domain.Agent, error) {
	data, err := Decode(text, f)
	if err != nil {
		return nil, err
	}
	items, err := Items(data, "agents")
	if err != nil {
		return nil, err
	}

	agents := make([]domain.Agent, len(items))
	for i, item := range items {
		if err := bind(item, &agents[i]); err != nil {
			return nil, fmt.Errorf("%w: item at index %d: %v", ErrDecode, i, err)
		}
	}
	return agents, nil
}

// DecodeFlows разбирает текст в список flows.
func DecodeFlows(text []byte, f Format) ([]domain.Flow, error) {
	data, err := Decode(text, f)
	if err != nil {
		return nil, err
	}
	items, err := Items(data, "flows")
	if err != nil {
		return nil, err
	}

	flows := make([]domain.Flow, len(items))
	for i, item := range items {
		if err := bind(item, &flows[i]); err != nil {
			return nil, fmt.Errorf("%w: item at index %d: %v", ErrDecode, i, err)
		}
	}
	return flows, nil
}

// EncodeAgents сериализует список агентов.
func EncodeAgents(agents []domain.Agent, f Format) ([]byte, error) {
	return encode(agents, f)
}

// EncodeFlows сериализует список flows.
func EncodeFlows(flows []domain.Flow, f Format) ([]byte, error) {
	return encode(flows, f)
}

// encode сериализует значение в указанный формат.
// YAML строится из JSON-представления, чтобы имена полей wire-контракта
// (snake_case из json-тегов) совпадали в обоих форматах.
func encode(v any, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return data, nil
	case FormatYAML:
		jsonBytes, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		var plain any
		if err := json.Unmarshal(jsonBytes, &plain); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		data, err := yaml.Marshal(plain)
		if err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

// bind переливает объект в типизированную сущность через JSON.
// Попутно отсекает небезопасные для JSON структуры (нескалярные
// ключи из YAML не переживут json.Marshal).
func bind(item map[string]any, dst any) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
