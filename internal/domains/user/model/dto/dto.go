package dto

import (
	"orzu/internal/domains/user/model"
	"orzu/shared"
	"orzu/shared/constant"
	gDto "orzu/shared/dto"
	gModel "orzu/shared/model"
	"orzu/shared/timezone"

	"github.com/google/uuid"
)

type CreateUserRequest struct {
	Username string  `json:"username"  validate:"required,min=3,max=50,alphanum"`
	Password string  `json:"password"  validate:"required,min=8"`
	Role     string  `json:"role"      validate:"omitempty,oneof=administrator manager operator viewer"`
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=100"`
	Active   *bool   `json:"active"    validate:"omitempty"`
}

func (r *CreateUserRequest) ToModel(creator string, hashedPassword string) model.User {
	role := r.Role
	if role == "" {
		role = constant.RoleViewer
	}

	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return model.User{
		ID:       uuid.NewString(),
		Username: r.Username,
		Password: hashedPassword,
		Role:     role,
		FullName: r.FullName,
		Active:   active,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  creator,
			ModifiedBy: creator,
		},
	}
}

type UpdateUserRequest struct {
	Role     *string `db:"role"      json:"role"      validate:"omitempty,oneof=administrator manager operator viewer"`
	FullName *string `db:"full_name" json:"full_name" validate:"omitempty,min=2,max=100"`
	Active   *bool   `db:"active"    json:"active"    validate:"omitempty"`
}

type UserResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Role      string  `json:"role"`
	FullName  *string `json:"full_name,omitempty"`
	LastLogin *string `json:"last_login,omitempty"`
	Active    bool    `json:"active"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(mod model.User) {
	r.ID = mod.ID
	r.Username = mod.Username
	r.Role = mod.Role
	r.FullName = mod.FullName
	r.LastLogin = mod.LastLogin
	r.Active = mod.Active
	r.Metadata.FromModel(mod.Metadata)
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"total_page"`
	TotalData int            `json:"total_data"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}
