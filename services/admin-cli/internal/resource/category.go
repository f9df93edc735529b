package resource

import (
	"strconv"

	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/pkg/validation"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/confirm"
	"StoryBoxAdmin/services/admin-cli/internal/notify"
)

// Category категория фильмов
type Category struct {
	ID          string `json:"id" yaml:"id"`
	UniqueID    string `json:"uniqueId" yaml:"uniqueId"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Image       string `json:"image,omitempty" yaml:"image,omitempty"`
	TotalMovies int    `json:"totalMovies" yaml:"totalMovies"`
	Date        string `json:"date" yaml:"date"`
	Active      bool   `json:"active" yaml:"active"`
}

func (c Category) RecordID() string { return c.ID }

func (c Category) TableHeaders() []string {
	return []string{"ID", "UNIQUE ID", "NAME", "MOVIES", "DATE", "ACTIVE"}
}

func (c Category) TableCells() []string {
	return []string{c.ID, c.UniqueID, c.Name, strconv.Itoa(c.TotalMovies), c.Date, strconv.FormatBool(c.Active)}
}

type categoryWire struct {
	UniqueID    string `mapstructure:"uniqueId"`
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
	Image       string `mapstructure:"image"`
	Thumbnail   string `mapstructure:"thumbnail"`
	TotalMovies int    `mapstructure:"totalMovies"`
	SeriesCount int    `mapstructure:"seriesCount"`
	CreatedAt   string `mapstructure:"createdAt"`
	IsActive    *bool  `mapstructure:"isActive"`
}

func decodeCategory(fields map[string]any) (Category, error) {
	var w categoryWire
	if err := decodeWire(fields, &w); err != nil {
		return Category{}, err
	}
	id := recordID(fields["id"])

	total := w.TotalMovies
	if total == 0 {
		total = w.SeriesCount
	}
	date := formatDate(w.CreatedAt)
	if date == "" {
		date = now().Format(displayDateLayout)
	}

	return Category{
		ID:          id,
		UniqueID:    firstNonEmpty(w.UniqueID, prefixedID("#CAT", id)),
		Name:        w.Name,
		Description: w.Description,
		Image:       firstNonEmpty(w.Image, w.Thumbnail),
		TotalMovies: total,
		Date:        date,
		Active:      notFalse(w.IsActive),
	}, nil
}

func validateCategory(fields Fields, updating bool) error {
	if updating {
		if _, ok := fields["name"]; !ok {
			return nil
		}
	}
	return validation.NewValidator().ValidateRequiredFields(fields, map[string]string{"name": "name"})
}

// CategoryDefinition описание ресурса категорий
func CategoryDefinition() Definition[Category] {
	return Definition[Category]{
		Name:     "category",
		ListKeys: []string{"categories"},
		Decode:   decodeCategory,
		Validate: validateCategory,
		Flags: []Flag[Category]{
			{
				Name:   "active",
				Policy: ServerConfirmed,
				Get:    func(c Category) bool { return c.Active },
				Set:    func(c Category, v bool) Category { c.Active = v; return c },
				Payload: func(c Category, next bool) Fields {
					return Fields{"name": c.Name, "description": c.Description, "isActive": next}
				},
				EnabledMessage:  "Category activated successfully",
				DisabledMessage: "Category deactivated successfully",
				FailureMessage:  "Failed to update category status",
			},
		},
		DeletePrompt: func(Category) confirm.Prompt { return deletePrompt("Delete Category", "category") },
		Messages: Messages{
			LoadFailed:   "Failed to load categories",
			Created:      "Category created successfully",
			CreateFailed: "Failed to save category",
			Updated:      "Category updated successfully",
			UpdateFailed: "Failed to save category",
			Deleted:      "Category deleted successfully",
			DeleteFailed: "Failed to delete category",
		},
	}
}

// NewCategories создает контроллер категорий
func NewCategories(api client.Dispatcher, gate confirm.Requester, notifier notify.Notifier, log logger.Logger) *Controller[Category] {
	backend := NewRemoteBackend(api, Operations{
		List:   client.OpCategoryList,
		Create: client.OpCategoryCreate,
		Update: client.OpCategoryUpdate,
		Delete: client.OpCategoryDelete,
	})
	return NewController(CategoryDefinition(), backend, gate, notifier, log)
}
