package resource

import (
	"strconv"

	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/pkg/validation"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/confirm"
	"StoryBoxAdmin/services/admin-cli/internal/notify"
)

// Content видео (эпизод) каталога
type Content struct {
	ID         string `json:"id" yaml:"id"`
	Title      string `json:"title" yaml:"title"`
	Creator    string `json:"creator,omitempty" yaml:"creator,omitempty"`
	Duration   string `json:"duration,omitempty" yaml:"duration,omitempty"`
	Views      int64  `json:"views" yaml:"views"`
	Likes      int64  `json:"likes" yaml:"likes"`
	Category   string `json:"category,omitempty" yaml:"category,omitempty"`
	UploadDate string `json:"uploadDate,omitempty" yaml:"uploadDate,omitempty"`
	Trending   bool   `json:"trending" yaml:"trending"`
	Active     bool   `json:"active" yaml:"active"`
}

func (c Content) RecordID() string { return c.ID }

func (c Content) TableHeaders() []string {
	return []string{"ID", "TITLE", "CREATOR", "DURATION", "VIEWS", "CATEGORY", "TRENDING", "ACTIVE"}
}

func (c Content) TableCells() []string {
	return []string{c.ID, c.Title, c.Creator, c.Duration, strconv.FormatInt(c.Views, 10), c.Category,
		strconv.FormatBool(c.Trending), strconv.FormatBool(c.Active)}
}

type contentWire struct {
	Title        string `mapstructure:"title"`
	Name         string `mapstructure:"name"`
	Creator      string `mapstructure:"creator"`
	Duration     string `mapstructure:"duration"`
	Views        int64  `mapstructure:"views"`
	Likes        int64  `mapstructure:"likes"`
	Category     string `mapstructure:"category"`
	CategoryName string `mapstructure:"categoryName"`
	UploadDate   string `mapstructure:"uploadDate"`
	CreatedAt    string `mapstructure:"createdAt"`
	Trending     *bool  `mapstructure:"trending"`
	IsTrending   *bool  `mapstructure:"isTrending"`
	Active       *bool  `mapstructure:"active"`
	IsActive     *bool  `mapstructure:"isActive"`
}

func decodeContent(fields map[string]any) (Content, error) {
	var w contentWire
	if err := decodeWire(fields, &w); err != nil {
		return Content{}, err
	}
	return Content{
		ID:         recordID(fields["id"]),
		Title:      firstNonEmpty(w.Title, w.Name),
		Creator:    w.Creator,
		Duration:   w.Duration,
		Views:      w.Views,
		Likes:      w.Likes,
		Category:   firstNonEmpty(w.Category, w.CategoryName),
		UploadDate: firstNonEmpty(w.UploadDate, formatDate(w.CreatedAt)),
		Trending:   isTrue(w.Trending) || isTrue(w.IsTrending),
		Active:     notFalse(w.Active, w.IsActive),
	}, nil
}

func validateContent(fields Fields, updating bool) error {
	if updating {
		return nil
	}
	return validation.NewValidator().ValidateRequiredFields(fields, map[string]string{"title": "title"})
}

// ContentDefinition описание ресурса видео. Trending хранится только локально.
func ContentDefinition() Definition[Content] {
	return Definition[Content]{
		Name:     "content",
		ListKeys: []string{"episodes", "videos"},
		Decode:   decodeContent,
		Validate: validateContent,
		Flags: []Flag[Content]{
			{
				Name:            "trending",
				Policy:          LocalOnly,
				Get:             func(c Content) bool { return c.Trending },
				Set:             func(c Content, v bool) Content { c.Trending = v; return c },
				EnabledMessage:  "Added to trending",
				DisabledMessage: "Removed from trending",
				FailureMessage:  "Failed to update trending status",
			},
			{
				Name:            "active",
				Policy:          ServerConfirmed,
				Get:             func(c Content) bool { return c.Active },
				Set:             func(c Content, v bool) Content { c.Active = v; return c },
				Payload:         func(_ Content, next bool) Fields { return Fields{"isActive": next} },
				EnabledMessage:  "Video activated",
				DisabledMessage: "Video deactivated",
				FailureMessage:  "Failed to update active status",
			},
		},
		DeletePrompt: func(Content) confirm.Prompt { return deletePrompt("Delete Video", "video") },
		Messages: Messages{
			LoadFailed:   "Failed to load videos",
			Created:      "Video created successfully",
			CreateFailed: "Failed to save video",
			Updated:      "Video updated successfully",
			UpdateFailed: "Failed to save video",
			Deleted:      "Video deleted successfully",
			DeleteFailed: "Failed to delete video",
		},
	}
}

// NewContent создает контроллер видео поверх операций эпизодов
func NewContent(api client.Dispatcher, gate confirm.Requester, notifier notify.Notifier, log logger.Logger) *Controller[Content] {
	backend := NewRemoteBackend(api, Operations{
		List:   client.OpEpisodeList,
		Create: client.OpEpisodeCreate,
		Update: client.OpEpisodeUpdate,
		Delete: client.OpEpisodeDelete,
	})
	return NewController(ContentDefinition(), backend, gate, notifier, log)
}
