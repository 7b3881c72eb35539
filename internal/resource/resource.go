package resource

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"student-portal/client/internal/api"
	"student-portal/client/pkg/apierr"
)

// Resources 所有资源适配器的聚合入口
// 每个适配器只负责一类后端资源的请求与数据整形，请求头统一交给 api.Client
type Resources struct {
	Auth       *AuthResource
	Attendance *AttendanceResource
	Marks      *MarksResource
	Fees       *FeesResource
	Courses    *CoursesResource
	Timetable  *TimetableResource
	Students   *StudentsResource
	Profile    *ProfileResource
}

// New 创建 Resources 聚合
func New(client *api.Client, logger *zap.Logger) *Resources {
	return &Resources{
		Auth:       &AuthResource{client: client, logger: logger},
		Attendance: &AttendanceResource{client: client, logger: logger},
		Marks:      &MarksResource{client: client, logger: logger},
		Fees:       &FeesResource{client: client, logger: logger},
		Courses:    &CoursesResource{client: client, logger: logger},
		Timetable:  &TimetableResource{client: client, logger: logger},
		Students:   &StudentsResource{client: client, logger: logger},
		Profile:    &ProfileResource{client: client, logger: logger},
	}
}

// userQuery 构造管理端代查学生数据的 userId 查询参数
//
// 后端的 自查 / 代查 共用同一端点：不带 userId 时按 token 身份返回本人数据，
// 管理员带 userId 时返回指定学生的数据。这里保留该复用设计，
// 由适配器签名（userID 为空 = 本人）把语义摆到明面上。
func userQuery(userID string) url.Values {
	if userID == "" {
		return nil
	}
	q := url.Values{}
	q.Set("userId", userID)
	return q
}

// ── 客户端校验 ──
//
// 发请求前按 validate 标签做字段级校验，失败时不触达网络，
// 错误以字段名（json 标签）→ 说明的形式反馈给界面层。

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	return v
}

// validateStruct 校验请求体，失败时返回 *apierr.ValidationError
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = validationMessage(fe)
	}
	return &apierr.ValidationError{Fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "必填"
	case "email":
		return "邮箱格式无效"
	case "min":
		return "长度不足 " + fe.Param()
	case "max":
		return "长度超过 " + fe.Param()
	default:
		return "格式无效"
	}
}
