package resource

import (
	"strconv"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/pkg/validation"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/confirm"
	"StoryBoxAdmin/services/admin-cli/internal/notify"
)

// Series сериал каталога
type Series struct {
	ID           string `json:"id" yaml:"id"`
	UniqueID     string `json:"uniqueId" yaml:"uniqueId"`
	Name         string `json:"name" yaml:"name"`
	Description  string `json:"description" yaml:"description"`
	CategoryID   string `json:"categoryId" yaml:"categoryId"`
	CategoryName string `json:"categoryName" yaml:"categoryName"`
	Banner       string `json:"banner,omitempty" yaml:"banner,omitempty"`
	Thumbnail    string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	ReleaseDate  string `json:"releaseDate" yaml:"releaseDate"`
	IsTrending   bool   `json:"isTrending" yaml:"isTrending"`
	IsActive     bool   `json:"isActive" yaml:"isActive"`
	CreatedAt    string `json:"createdAt" yaml:"createdAt"`
}

func (s Series) RecordID() string { return s.ID }

func (s Series) TableHeaders() []string {
	return []string{"ID", "UNIQUE ID", "NAME", "CATEGORY", "RELEASE", "TRENDING", "ACTIVE"}
}

func (s Series) TableCells() []string {
	return []string{s.ID, s.UniqueID, s.Name, s.CategoryName, s.ReleaseDate,
		strconv.FormatBool(s.IsTrending), strconv.FormatBool(s.IsActive)}
}

type seriesWire struct {
	UniqueID     string `mapstructure:"uniqueId"`
	Name         string `mapstructure:"name"`
	Description  string `mapstructure:"description"`
	CategoryID   string `mapstructure:"categoryId"`
	CategoryName string `mapstructure:"categoryName"`
	Banner       string `mapstructure:"banner"`
	Thumbnail    string `mapstructure:"thumbnail"`
	ReleaseDate  string `mapstructure:"releaseDate"`
	IsTrending   *bool  `mapstructure:"isTrending"`
	IsActive     *bool  `mapstructure:"isActive"`
	CreatedAt    string `mapstructure:"createdAt"`
}

func decodeSeries(fields map[string]any) (Series, error) {
	var w seriesWire
	if err := decodeWire(fields, &w); err != nil {
		return Series{}, err
	}
	id := recordID(fields["id"])
	return Series{
		ID:           id,
		UniqueID:     firstNonEmpty(w.UniqueID, prefixedID("#SER", id)),
		Name:         w.Name,
		Description:  w.Description,
		CategoryID:   w.CategoryID,
		CategoryName: firstNonEmpty(w.CategoryName, "Unknown"),
		Banner:       w.Banner,
		Thumbnail:    w.Thumbnail,
		ReleaseDate:  formatDate(w.ReleaseDate),
		IsTrending:   isTrue(w.IsTrending),
		IsActive:     notFalse(w.IsActive),
		CreatedAt:    formatDate(w.CreatedAt),
	}, nil
}

// MissingFieldsMessage сообщение о незаполненных обязательных полях формы сериала
const MissingFieldsMessage = "Please fill in all required fields"

func validateSeries(fields Fields, updating bool) error {
	if updating {
		return nil
	}
	err := validation.NewValidator().ValidateRequiredFields(fields, map[string]string{
		"name":       "name",
		"categoryId": "category",
	})
	if err != nil {
		return errors.New(errors.ErrValidation, MissingFieldsMessage)
	}
	return nil
}

func seriesFlag(name string, get func(Series) bool, set func(Series, bool) Series, on, off string) Flag[Series] {
	return Flag[Series]{
		Name:   name,
		Policy: ServerConfirmed,
		Get:    get,
		Set:    set,
		Payload: func(s Series, next bool) Fields {
			return Fields{"name": s.Name, "categoryId": s.CategoryID, name: next}
		},
		EnabledMessage:  on,
		DisabledMessage: off,
		FailureMessage:  "Failed to update series",
	}
}

// SeriesDefinition описание ресурса сериалов
func SeriesDefinition() Definition[Series] {
	return Definition[Series]{
		Name:     "series",
		ListKeys: []string{"series"},
		Decode:   decodeSeries,
		Validate: validateSeries,
		Flags: []Flag[Series]{
			seriesFlag("isActive",
				func(s Series) bool { return s.IsActive },
				func(s Series, v bool) Series { s.IsActive = v; return s },
				"Series activated successfully", "Series deactivated successfully"),
			seriesFlag("isTrending",
				func(s Series) bool { return s.IsTrending },
				func(s Series, v bool) Series { s.IsTrending = v; return s },
				"Series added to trending", "Series removed from trending"),
		},
		DeletePrompt: func(Series) confirm.Prompt { return deletePrompt("Delete Series", "series") },
		Messages: Messages{
			LoadFailed:   "Failed to load series",
			Created:      "Series created successfully",
			CreateFailed: "Failed to save series",
			Updated:      "Series updated successfully",
			UpdateFailed: "Failed to save series",
			Deleted:      "Series deleted successfully",
			DeleteFailed: "Failed to delete series",
		},
	}
}

// NewSeries создает контроллер сериалов
func NewSeries(api client.Dispatcher, gate confirm.Requester, notifier notify.Notifier, log logger.Logger) *Controller[Series] {
	backend := NewRemoteBackend(api, Operations{
		List:   client.OpSeriesList,
		Create: client.OpSeriesCreate,
		Update: client.OpSeriesUpdate,
		Delete: client.OpSeriesDelete,
	})
	return NewController(SeriesDefinition(), backend, gate, notifier, log)
}
