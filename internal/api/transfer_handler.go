package api

import (
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/shaiso/Ensemble/internal/codec"
	"github.com/shaiso/Ensemble/internal/domain"
	"github.com/shaiso/Ensemble/internal/telemetry"
	"github.com/shaiso/Ensemble/internal/transfer"
)

// maxUploadBytes — жёсткий верхний предел чтения тела запроса.
// Точный лимит применяет transfer.Pipeline.
const maxUploadBytes = 16 << 20

// ExportAgents сериализует всех агентов в запрошенный формат.
// GET /api/v1/agents/export?format=json|yaml
func (h *Handler) ExportAgents(w http.ResponseWriter, r *http.Request) {
	format, ok := h.queryFormat(w, r)
	if !ok {
		return
	}

	data, err := h.pipeline.ExportAgents(r.Context(), format)
	if HandleDomainError(w, h.logger, err) {
		return
	}
	writeExport(w, data, format)
}

// ExportFlows сериализует все flows в запрошенный формат.
// GET /api/v1/flows/export?format=json|yaml
func (h *Handler) ExportFlows(w http.ResponseWriter, r *http.Request) {
	format, ok := h.queryFormat(w, r)
	if !ok {
		return
	}

	data, err := h.pipeline.ExportFlows(r.Context(), format)
	if HandleDomainError(w, h.logger, err) {
		return
	}
	writeExport(w, data, format)
}

// ImportAgents импортирует пачку агентов из тела запроса.
// POST /api/v1/agents/import?format=json|yaml
func (h *Handler) ImportAgents(w http.ResponseWriter, r *http.Request) {
	format, ok := h.queryFormat(w, r)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	created, err := h.pipeline.ImportAgents(r.Context(), body, format)
	if err != nil {
		telemetry.ImportsTotal.WithLabelValues(string(transfer.KindAgents), telemetry.OutcomeFailed).Inc()
		HandleDomainError(w, h.logger, err)
		return
	}
	h.importedAgents(r, created)

	Created(w, created)
}

// ImportAgentsFile импортирует агентов из загруженного файла.
// POST /api/v1/agents/import/file?format=json|yaml (multipart, поле file)
func (h *Handler) ImportAgentsFile(w http.ResponseWriter, r *http.Request) {
	format, ok := h.queryFormat(w, r)
	if !ok {
		return
	}
	data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	created, err := h.pipeline.ImportAgentsFile(r.Context(), data, format)
	if err != nil {
		telemetry.ImportsTotal.WithLabelValues(string(transfer.KindAgents), telemetry.OutcomeFailed).Inc()
		HandleDomainError(w, h.logger, err)
		return
	}
	h.importedAgents(r, created)

	Created(w, created)
}

// ImportFlows импортирует пачку flows из тела запроса.
// POST /api/v1/flows/import?format=json|yaml
func (h *Handler) ImportFlows(w http.ResponseWriter, r *http.Request) {
	format, ok := h.queryFormat(w, r)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	created, err := h.pipeline.ImportFlows(r.Context(), body, format)
	if err != nil {
		telemetry.ImportsTotal.WithLabelValues(string(transfer.KindFlows), telemetry.OutcomeFailed).Inc()
		HandleDomainError(w, h.logger, err)
		return
	}
	h.importedFlows(r, created)

	Created(w, created)
}

// ImportFlowsFile импортирует flows из загруженного файла.
// POST /api/v1/flows/import/file?format=json|yaml (multipart, поле file)
func (h *Handler) ImportFlowsFile(w http.ResponseWriter, r *http.Request) {
	format, ok := h.queryFormat(w, r)
	if !ok {
		return
	}
	data, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	created, err := h.pipeline.ImportFlowsFile(r.Context(), data, format)
	if err != nil {
		telemetry.ImportsTotal.WithLabelValues(string(transfer.KindFlows), telemetry.OutcomeFailed).Inc()
		HandleDomainError(w, h.logger, err)
		return
	}
	h.importedFlows(r, created)

	Created(w, created)
}

// ValidateAgents проверяет пачку агентов без записи.
// POST /api/v1/agents/validate?format=json|yaml
func (h *Handler) ValidateAgents(w http.ResponseWriter, r *http.Request) {
	h.validate(w, r, transfer.KindAgents)
}

// ValidateFlows проверяет пачку flows без записи.
// POST /api/v1/flows/validate?format=json|yaml
func (h *Handler) ValidateFlows(w http.ResponseWriter, r *http.Request) {
	h.validate(w, r, transfer.KindFlows)
}

// validate — общий путь проверки без коммита. Ошибки валидации —
// это содержимое отчёта, а не HTTP ошибка: ответ всегда 200.
func (h *Handler) validate(w http.ResponseWriter, r *http.Request, kind transfer.Kind) {
	format, ok := h.queryFormat(w, r)
	if !ok {
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	Success(w, h.pipeline.Validate(r.Context(), body, format, kind))
}

// writeExport отдаёт сериализованный документ как есть,
// без конверта {"data": ...}: экспорт должен быть пригоден
// для последующего импорта без обработки.
func writeExport(w http.ResponseWriter, data []byte, format codec.Format) {
	if format == codec.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// queryFormat разбирает параметр format. Пустое значение — JSON.
func (h *Handler) queryFormat(w http.ResponseWriter, r *http.Request) (codec.Format, bool) {
	format, err := codec.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		BadRequest(w, err.Error())
		return "", false
	}
	return format, true
}

// readBody читает тело запроса с верхним пределом.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		BadRequest(w, "failed to read request body")
		return nil, false
	}
	return body, true
}

// readUpload извлекает файл из multipart-формы (поле file).
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	file, _, err := r.FormFile("file")
	if err != nil {
		BadRequest(w, "multipart form must contain a file field")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		BadRequest(w, "failed to read uploaded file")
		return nil, false
	}
	return data, true
}

// importedAgents фиксирует успешный импорт агентов: метрики и событие.
func (h *Handler) importedAgents(r *http.Request, created []domain.Agent) {
	telemetry.ImportsTotal.WithLabelValues(string(transfer.KindAgents), telemetry.OutcomeOK).Inc()
	telemetry.ImportedItemsTotal.WithLabelValues(string(transfer.KindAgents)).Add(float64(len(created)))

	ids := make([]uuid.UUID, len(created))
	for i, a := range created {
		ids[i] = a.ID
	}
	if err := h.publisher.PublishAgentsImported(r.Context(), ids); err != nil {
		h.logger.Warn("publish agents.imported failed", "error", err)
	}
}

// importedFlows фиксирует успешный импорт flows: метрики и событие.
func (h *Handler) importedFlows(r *http.Request, created []domain.Flow) {
	telemetry.ImportsTotal.WithLabelValues(string(transfer.KindFlows), telemetry.OutcomeOK).Inc()
	telemetry.ImportedItemsTotal.WithLabelValues(string(transfer.KindFlows)).Add(float64(len(created)))

	ids := make([]uuid.UUID, len(created))
	for i, f := range created {
		ids[i] = f.ID
	}
	if err := h.publisher.PublishFlowsImported(r.Context(), ids); err != nil {
		h.logger.Warn("publish flows.imported failed", "error", err)
	}
}
