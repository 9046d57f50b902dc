package model

import (
	"orzu/shared/model"

	"github.com/jmoiron/sqlx/types"
)

const (
	TableName  = "history_logs"
	EntityName = "historyLog"

	FieldID         = "id"
	FieldUserID     = "user_id"
	FieldUsername   = "username"
	FieldEntityType = "entity_type"
	FieldEntityID   = "entity_id"
	FieldAction     = "action"
	FieldChanges    = "changes"
)

const (
	EntityTypeRoom    = "room"
	EntityTypeBooking = "booking"
	EntityTypeUser    = "user"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionExtend = "extend"
	ActionLogin  = "login"
)

type HistoryLog struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Username    string         `db:"username"`
	EntityType  string         `db:"entity_type"`
	EntityID    string         `db:"entity_id"`
	Action      string         `db:"action"`
	Changes     types.JSONText `db:"changes"`
	Description string         `db:"description"`
	model.Metadata
}
