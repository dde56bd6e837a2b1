package api

import (
	"encoding/json"
	"net/http"

	"github.com/shaiso/Ensemble/internal/convert"
)

// ConvertAgentMarkdown конвертирует Markdown-документ в черновик
// агента. Конвертация ничего не сохраняет: результат — кандидат
// для последующего create или import. Ошибки конвертации — это
// содержимое ответа, а не HTTP ошибка.
//
// POST /api/v1/convert/agent-md
func (h *Handler) ConvertAgentMarkdown(w http.ResponseWriter, r *http.Request) {
	var req ConvertAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		BadRequest(w, "invalid request body")
		return
	}

	Success(w, convert.Markdown(req.Text))
}
