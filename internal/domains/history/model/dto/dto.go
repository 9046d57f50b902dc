package dto

import (
	"encoding/json"

	"orzu/internal/domains/history/model"
	"orzu/shared"
	gDto "orzu/shared/dto"
)

type HistoryLogResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Username    string          `json:"username"`
	EntityType  string          `json:"entity_type"`
	EntityID    string          `json:"entity_id"`
	Action      string          `json:"action"`
	Changes     json.RawMessage `json:"changes,omitempty"`
	Description string          `json:"description"`
	gDto.Metadata
}

func (h *HistoryLogResponse) FromModel(mod model.HistoryLog) {
	h.ID = mod.ID
	h.UserID = mod.UserID
	h.Username = mod.Username
	h.EntityType = mod.EntityType
	h.EntityID = mod.EntityID
	h.Action = mod.Action
	h.Changes = json.RawMessage(mod.Changes)
	h.Description = mod.Description
	h.Metadata.FromModel(mod.Metadata)
}

type GetHistoryResponse struct {
	Logs      []HistoryLogResponse `json:"logs"`
	TotalPage int                  `json:"total_page"`
	TotalData int                  `json:"total_data"`
}

func (h *GetHistoryResponse) FromModels(models []model.HistoryLog, totalData, limit int) {
	h.TotalData = totalData
	h.TotalPage = shared.CalculateTotalPage(totalData, limit)

	h.Logs = make([]HistoryLogResponse, len(models))
	for i, mod := range models {
		h.Logs[i].FromModel(mod)
	}
}
