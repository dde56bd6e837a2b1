// Package convert преобразует Markdown-документ с YAML front matter
// в черновик агента.
//
// Формат документа:
//
//	---
//	name: Researcher
//	role: research
//	tools: search, browser
//	---
//	Текст после закрывающей границы становится backstory агента
//	(или goal, если front matter содержит body: goal).
//
// Распознаваемые ключи front matter: name, role, goal, backstory,
// tools (список или строка через запятую), body (goal | backstory —
// куда класть тело документа, по умолчанию backstory). Нераспознанные
// ключи сохраняются в input_artifacts.
//
// Конвертер никогда не пишет в store: он возвращает кандидата,
// пригодного для последующего create/import.
package convert

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shaiso/Ensemble/internal/domain"
)

// fence — маркер границы front matter.
const fence = "---"

// Result — результат конвертации.
type Result struct {
	// OK — true, если получен валидный агент.
	OK bool `json:"ok"`

	// Agent — черновик агента. nil при любой ошибке: частично
	// заполненный агент не возвращается никогда.
	Agent *domain.Agent `json:"agent,omitempty"`

	// Errors — список всех проблем.
	Errors []string `json:"errors"`

	// Message — краткое описание исхода.
	Message string `json:"message,omitempty"`
}

// Markdown конвертирует Markdown-документ в черновик агента.
// Все ошибки возвращаются в Result, паник и error нет: отсутствие
// front matter — это ошибка валидации, а не сбой.
func Markdown(text string) Result {
	if strings.TrimSpace(text) == "" {
		return failure("markdown payload must be a non-empty string")
	}

	meta, body, err := splitFrontMatter(text)
	if err != nil {
		return failure(err.Error())
	}

	agent, errs := mapAgent(meta, body)
	if len(errs) > 0 {
		return Result{OK: false, Errors: errs, Message: "agent validation failed"}
	}

	return Result{OK: true, Agent: agent, Errors: []string{}}
}

// failure — Result с одной ошибкой.
func failure(msg string) Result {
	return Result{OK: false, Errors: []string{msg}, Message: msg}
}

// splitFrontMatter отделяет блок front matter от тела документа.
// Блок ограничен первой строкой документа и первой последующей
// строкой, каждая из которых содержит ровно маркер границы.
func splitFrontMatter(text string) (map[string]any, string, error) {
	trimmed := strings.TrimLeft(text, " \t\r\n")
	lines := strings.Split(strings.ReplaceAll(trimmed, "\r\n", "\n"), "\n")

	if len(lines) == 0 || strings.TrimRight(lines[0], " \t") != fence {
		return nil, "", fmt.Errorf("markdown payload must start with a yaml front matter block")
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t") == fence {
			closing = i
			break
		}
	}
	if closing == -1 {
		return nil, "", fmt.Errorf("front matter block is not closed")
	}

	raw := strings.Join(lines[1:closing], "\n")
	body := strings.TrimSpace(strings.Join(lines[closing+1:], "\n"))

	var data any
	if err := yaml.Unmarshal([]byte(raw), &data); err != nil {
		return nil, "", fmt.Errorf("invalid yaml front matter: %v", err)
	}
	if data == nil {
		return map[string]any{}, body, nil
	}

	meta, ok := data.(map[string]any)
	if !ok {
		return nil, "", fmt.Errorf("front matter must define a mapping")
	}
	return meta, body, nil
}

// mapAgent раскладывает ключи front matter по полям агента.
// Возвращает либо агента, либо полный список нарушений.
func mapAgent(meta map[string]any, body string) (*domain.Agent, []string) {
	var errs []string
	agent := &domain.Agent{}
	bodyTarget := "backstory"

	for key, value := range meta {
		switch key {
		case "name":
			agent.Name = asString(value)
		case "role":
			agent.Role = asString(value)
		case "goal":
			agent.Goal = asString(value)
		case "backstory":
			agent.Backstory = asString(value)
		case "tools":
			tools, err := asTools(value)
			if err != nil {
				errs = append(errs, err.Error())
				continue
			}
			agent.Tools = tools
		case "body":
			target := strings.ToLower(asString(value))
			if target != "goal" && target != "backstory" {
				errs = append(errs, fmt.Sprintf("body must be %q or %q, got %q", "goal", "backstory", asString(value)))
				continue
			}
			bodyTarget = target
		default:
			// Нераспознанные ключи сохраняем, а не отбрасываем.
			if agent.InputArtifacts == nil {
				agent.InputArtifacts = make(map[string]any)
			}
			agent.InputArtifacts[key] = value
		}
	}

	// Тело документа заполняет целевое поле, только если front matter
	// не задал его явно.
	if body != "" {
		switch bodyTarget {
		case "goal":
			if agent.Goal == "" {
				agent.Goal = body
			}
		case "backstory":
			if agent.Backstory == "" {
				agent.Backstory = body
			}
		}
	}

	// Та же валидация обязательных полей, что при прямом создании.
	errs = append(errs, agent.Validate()...)
	if len(errs) > 0 {
		return nil, errs
	}
	return agent, nil
}

// asString приводит значение front matter к строке.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

// asTools разбирает tools: YAML-список строк или строка через запятую.
func asTools(v any) ([]string, error) {
	switch val := v.(type) {
	case string:
		var tools []string
		for _, part := range strings.Split(val, ",") {
			if p := strings.TrimSpace(part); p != "" {
				tools = append(tools, p)
			}
		}
		return tools, nil
	case []any:
		tools := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("tools list must contain only strings, got %v", item)
			}
			tools = append(tools, strings.TrimSpace(s))
		}
		return tools, nil
	default:
		return nil, fmt.Errorf("tools must be a list or a comma-separated string")
	}
}
