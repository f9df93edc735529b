package client

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Operation логическое имя операции удаленного сервиса
type Operation string

// Операции сервиса StoryBox
const (
	OpDashboardInfo Operation = "dashboard.info"

	OpAuthLogin          Operation = "auth.login"
	OpAuthForgetPassword Operation = "auth.forget_password"
	OpAuthResetPassword  Operation = "auth.reset_password"

	OpProfileGet            Operation = "profile.get"
	OpProfileUpdate         Operation = "profile.update"
	OpProfileChangePassword Operation = "profile.change_password"
	OpProfilePicturePresign Operation = "profile.picture_presign"
	OpProfilePictureSave    Operation = "profile.picture_save"

	OpEmployeeCreate     Operation = "employee.create"
	OpEmployeeList       Operation = "employee.list"
	OpEmployeeUpdate     Operation = "employee.update"
	OpEmployeeDelete     Operation = "employee.delete"
	OpEmployeePermission Operation = "employee.permission"

	OpUsersList       Operation = "users.list"
	OpUsersGet        Operation = "users.get"
	OpUsersPermission Operation = "users.permission"

	OpCategoryCreate Operation = "category.create"
	OpCategoryList   Operation = "category.list"
	OpCategoryGet    Operation = "category.get"
	OpCategoryUpdate Operation = "category.update"
	OpCategoryDelete Operation = "category.delete"

	OpSeriesCreate Operation = "series.create"
	OpSeriesList   Operation = "series.list"
	OpSeriesGet    Operation = "series.get"
	OpSeriesUpdate Operation = "series.update"
	OpSeriesDelete Operation = "series.delete"

	OpEpisodeCreate Operation = "episode.create"
	OpEpisodeList   Operation = "episode.list"
	OpEpisodeGet    Operation = "episode.get"
	OpEpisodeUpdate Operation = "episode.update"
	OpEpisodeDelete Operation = "episode.delete"

	OpUploadFile  Operation = "upload.file"
	OpUploadImage Operation = "upload.image"
	OpUploadVideo Operation = "upload.video"
)

// BodyKind способ кодирования тела запроса. Для операции он фиксирован.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyJSON
	BodyMultipart
)

func (k BodyKind) String() string {
	switch k {
	case BodyJSON:
		return "json"
	case BodyMultipart:
		return "multipart"
	default:
		return "none"
	}
}

// Endpoint описывает HTTP метод, шаблон пути и форму тела операции.
// Параметры пути записываются как {name}. Параметры из QueryParams
// берутся из PathParams запроса и передаются в строке запроса первыми.
type Endpoint struct {
	Method        string
	Path          string
	Body          BodyKind
	QueryParams   []string
	Authenticated bool
}

// Catalog статическое отображение операций на эндпоинты
type Catalog map[Operation]Endpoint

// DefaultCatalog возвращает каталог сервиса StoryBox. Пути относительны base_url, который оканчивается на /api/v1.
func DefaultCatalog() Catalog {
	auth := func(method, path string, body BodyKind) Endpoint {
		return Endpoint{Method: method, Path: path, Body: body, Authenticated: true}
	}
	public := func(method, path string, body BodyKind) Endpoint {
		return Endpoint{Method: method, Path: path, Body: body}
	}

	return Catalog{
		OpDashboardInfo: auth(http.MethodGet, "/dashboard/info", BodyNone),

		OpAuthLogin:          public(http.MethodPost, "/dashboard/auth/login", BodyJSON),
		OpAuthForgetPassword: public(http.MethodPost, "/dashboard/auth/forget-password", BodyJSON),
		OpAuthResetPassword:  public(http.MethodPost, "/dashboard/auth/reset-password", BodyJSON),

		OpProfileGet:            auth(http.MethodGet, "/dashboard/profile", BodyNone),
		OpProfileUpdate:         auth(http.MethodPut, "/dashboard/profile", BodyJSON),
		OpProfileChangePassword: auth(http.MethodPatch, "/dashboard/profile/change-password", BodyJSON),
		OpProfilePicturePresign: auth(http.MethodPost, "/dashboard/profile/picture/presign", BodyJSON),
		OpProfilePictureSave:    auth(http.MethodPatch, "/dashboard/profile/picture", BodyJSON),

		OpEmployeeCreate: auth(http.MethodPost, "/dashboard/employee/create", BodyJSON),
		OpEmployeeList:   auth(http.MethodGet, "/dashboard/employee", BodyNone),
		OpEmployeeUpdate: auth(http.MethodPut, "/dashboard/employee", BodyJSON),
		OpEmployeeDelete: {
			Method:        http.MethodDelete,
			Path:          "/dashboard/employee",
			Body:          BodyNone,
			QueryParams:   []string{"id"},
			Authenticated: true,
		},
		OpEmployeePermission: auth(http.MethodPatch, "/dashboard/employee/permission", BodyJSON),

		OpUsersList:       auth(http.MethodGet, "/dashboard/users", BodyNone),
		OpUsersGet:        auth(http.MethodGet, "/dashboard/users/{id}", BodyNone),
		OpUsersPermission: auth(http.MethodPatch, "/dashboard/users/permissions", BodyJSON),

		OpCategoryCreate: auth(http.MethodPost, "/dashboard/category/create", BodyJSON),
		OpCategoryList:   auth(http.MethodGet, "/dashboard/category", BodyNone),
		OpCategoryGet:    auth(http.MethodGet, "/dashboard/category/{id}", BodyNone),
		OpCategoryUpdate: auth(http.MethodPut, "/dashboard/category", BodyJSON),
		OpCategoryDelete: auth(http.MethodDelete, "/dashboard/category/{id}", BodyNone),

		OpSeriesCreate: auth(http.MethodPost, "/dashboard/videoSeries", BodyJSON),
		OpSeriesList:   auth(http.MethodGet, "/dashboard/videoSeries", BodyNone),
		OpSeriesGet:    auth(http.MethodGet, "/dashboard/videoSeries/{id}", BodyNone),
		OpSeriesUpdate: auth(http.MethodPut, "/dashboard/videoSeries", BodyJSON),
		OpSeriesDelete: auth(http.MethodDelete, "/dashboard/videoSeries/{id}", BodyNone),

		OpEpisodeCreate: auth(http.MethodPost, "/dashboard/episode", BodyJSON),
		OpEpisodeList:   auth(http.MethodGet, "/dashboard/episode", BodyNone),
		OpEpisodeGet:    auth(http.MethodGet, "/dashboard/episode/{id}", BodyNone),
		OpEpisodeUpdate: auth(http.MethodPut, "/dashboard/episode", BodyJSON),
		OpEpisodeDelete: auth(http.MethodDelete, "/dashboard/episode/{id}", BodyNone),

		OpUploadFile:  auth(http.MethodPost, "/upload", BodyMultipart),
		OpUploadImage: auth(http.MethodPost, "/upload/image", BodyMultipart),
		OpUploadVideo: auth(http.MethodPost, "/upload/video", BodyMultipart),
	}
}

// Lookup возвращает эндпоинт операции
func (c Catalog) Lookup(op Operation) (Endpoint, bool) {
	ep, ok := c[op]
	return ep, ok
}

// Operations возвращает все операции каталога в алфавитном порядке
func (c Catalog) Operations() []Operation {
	ops := make([]Operation, 0, len(c))
	for op := range c {
		ops = append(ops, op)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i] < ops[j] })
	return ops
}

// BuildPath подставляет параметры в шаблон пути. Значения экранируются как сегменты пути.
func (e Endpoint) BuildPath(params map[string]string) (string, error) {
	var b strings.Builder
	rest := e.Path
	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			return "", fmt.Errorf("malformed path template %q", e.Path)
		}
		end += start

		name := rest[start+1 : end]
		value, ok := params[name]
		if !ok || value == "" {
			return "", fmt.Errorf("missing path parameter %q", name)
		}
		b.WriteString(rest[:start])
		b.WriteString(escapePathSegment(value))
		rest = rest[end+1:]
	}
	return b.String(), nil
}
