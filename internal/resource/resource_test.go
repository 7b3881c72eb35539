package resource

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"student-portal/client/internal/collection"
	"student-portal/client/internal/dto"
	"student-portal/client/internal/session"
	"student-portal/client/pkg/apierr"
)

// ── 认证测试 ──

func TestAuthResource_Login_Success(t *testing.T) {
	backend := newStubBackend()
	res := setupTestResources(t, backend)

	s, err := res.Auth.Login(context.Background(), "STU2023001", "secret123", session.RoleStudent)
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if s.Token != "tok-stub" {
		t.Errorf("期望Token=tok-stub，实际=%s", s.Token)
	}
	if s.Role != session.RoleStudent {
		t.Errorf("期望Role=student，实际=%s", s.Role)
	}
	if s.Identity.Email != "alice@example.com" {
		t.Errorf("期望Email=alice@example.com，实际=%s", s.Identity.Email)
	}
}

func TestAuthResource_Login_RoleMismatch(t *testing.T) {
	backend := newStubBackend()
	res := setupTestResources(t, backend)

	// 账号实际是学生，却选择以管理员身份登录
	_, err := res.Auth.Login(context.Background(), "STU2023001", "secret123", session.RoleAdmin)
	if !errors.Is(err, ErrRoleMismatch) {
		t.Errorf("期望 ErrRoleMismatch，实际: %v", err)
	}
}

func TestAuthResource_Login_ValidationSkipsNetwork(t *testing.T) {
	backend := newStubBackend()
	res := setupTestResources(t, backend)

	_, err := res.Auth.Login(context.Background(), "STU2023001", "123", session.RoleStudent)

	var verr *apierr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("期望 ValidationError，实际: %v", err)
	}
	if _, ok := verr.Fields["password"]; !ok {
		t.Errorf("期望 password 字段报错，实际=%v", verr.Fields)
	}
	if backend.hitCount("/auth/login") != 0 {
		t.Error("校验失败不应触达网络")
	}
}

func TestAuthResource_Register_Validation(t *testing.T) {
	backend := newStubBackend()
	res := setupTestResources(t, backend)

	err := res.Auth.Register(context.Background(), dto.RegisterRequest{
		Name: "A", StudentID: "", Email: "not-an-email", Password: "123",
	})

	var verr *apierr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("期望 ValidationError，实际: %v", err)
	}
	for _, field := range []string{"name", "studentId", "email", "password"} {
		if _, ok := verr.Fields[field]; !ok {
			t.Errorf("期望 %s 字段报错，实际=%v", field, verr.Fields)
		}
	}
}

// ── 考勤测试 ──

func TestAttendanceResource_Get_DegradesOnFailure(t *testing.T) {
	backend := newStubBackend()
	backend.failPaths["/attendance"] = 500
	res := setupTestResources(t, backend)

	resp := res.Attendance.Get(context.Background(), "")
	if resp == nil || resp.Subjects == nil {
		t.Fatal("读失败应降级为空集而非 nil")
	}
	if len(resp.Subjects) != 0 {
		t.Errorf("期望空集，实际=%d条", len(resp.Subjects))
	}
}

func TestAttendanceCollection_ListAndUpsert(t *testing.T) {
	backend := newStubBackend()
	backend.attendance = dto.AttendanceResponse{
		Subjects: []dto.AttendanceSubject{
			{ID: "att-1", Subject: "Math", AttendedClasses: 18, TotalClasses: 24, Percentage: 75},
		},
	}
	res := setupTestResources(t, backend)
	adapter := res.Attendance.Collection()
	sel := collection.Selection{StudentID: "user-001"}

	records, err := adapter.List(context.Background(), sel)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("期望1条记录，实际=%d", len(records))
	}
	if records[0].ID != "att-1" {
		t.Errorf("期望ID=att-1，实际=%s", records[0].ID)
	}
	if got := records[0].Num(FieldPercentage); got != 75 {
		t.Errorf("期望percentage=75，实际=%v", got)
	}

	id, err := adapter.Upsert(context.Background(), sel, records[0])
	if err != nil {
		t.Fatalf("Upsert 应成功: %v", err)
	}
	if id == "" {
		t.Error("期望返回后端分配的 ID")
	}

	sent, ok := backend.upserts[0].(*dto.AttendanceUpsert)
	if !ok {
		t.Fatalf("期望 AttendanceUpsert，实际=%T", backend.upserts[0])
	}
	if sent.UserID != "user-001" {
		t.Errorf("期望userId=user-001，实际=%s", sent.UserID)
	}
	if sent.AttendedClasses != 18 || sent.TotalClasses != 24 {
		t.Errorf("期望18/24，实际=%d/%d", sent.AttendedClasses, sent.TotalClasses)
	}
}

func TestAttendanceCollection_DeleteUnsupported(t *testing.T) {
	res := setupTestResources(t, newStubBackend())

	err := res.Attendance.Collection().Delete(context.Background(), "att-1")
	if !errors.Is(err, ErrDeleteUnsupported) {
		t.Errorf("期望 ErrDeleteUnsupported，实际: %v", err)
	}
}

// ── 成绩测试 ──

func TestMarksCollection_List_FiltersSemesterAndFlattens(t *testing.T) {
	backend := newStubBackend()
	backend.marks = dto.MarksResponse{
		Semesters: []dto.SemesterMarks{
			{Semester: 1, Subjects: []dto.MarkSubject{
				{ID: "m-1", Subject: "Math", InternalMarks: 35, ExternalMarks: 42, Grade: "A"},
			}},
			{Semester: 2, Subjects: []dto.MarkSubject{
				{ID: "m-2", Subject: "Physics", InternalMarks: 30, ExternalMarks: 40, Grade: "B"},
			}},
		},
	}
	res := setupTestResources(t, backend)

	records, err := res.Marks.Collection().List(context.Background(), collection.Selection{
		StudentID: "user-001", Semester: "1",
	})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("期望只取第1学期的1条记录，实际=%d", len(records))
	}
	if got := records[0].Str(FieldSubject); got != "Math" {
		t.Errorf("期望subject=Math，实际=%s", got)
	}
	// 总分在整形时就按 internal + external 算好
	if got := records[0].Num(FieldTotal); got != 77 {
		t.Errorf("期望total=77，实际=%v", got)
	}
}

func TestMarksCollection_Upsert_CarriesSemester(t *testing.T) {
	backend := newStubBackend()
	res := setupTestResources(t, backend)

	rec := collection.NewRecord(NewMarkRow())
	_, err := res.Marks.Collection().Upsert(context.Background(), collection.Selection{
		StudentID: "user-001", Semester: "3",
	}, rec)
	if err != nil {
		t.Fatalf("Upsert 应成功: %v", err)
	}

	sent := backend.upserts[0].(*dto.MarkUpsert)
	if sent.Semester != 3 {
		t.Errorf("期望semester=3，实际=%d", sent.Semester)
	}
	if sent.UserID != "user-001" {
		t.Errorf("期望userId=user-001，实际=%s", sent.UserID)
	}
}

func TestMarksSchema_EditRecomputesTotal(t *testing.T) {
	backend := newStubBackend()
	backend.marks = dto.MarksResponse{
		Semesters: []dto.SemesterMarks{
			{Semester: 1, Subjects: []dto.MarkSubject{
				{ID: "m-1", Subject: "Math", InternalMarks: 10, ExternalMarks: 10, Grade: "C"},
			}},
		},
	}
	res := setupTestResources(t, backend)

	ctrl := collection.NewController(res.Marks.Collection(), MarksSchema(), zap.NewNop())
	if err := ctrl.SetSelection(context.Background(), collection.Selection{
		StudentID: "user-001", Semester: "1",
	}); err != nil {
		t.Fatalf("SetSelection 应成功: %v", err)
	}

	ctrl.EditField(0, FieldInternal, "35")
	ctrl.EditField(0, FieldExternal, "42")

	if got := ctrl.Records()[0].Num(FieldTotal); got != 77 {
		t.Errorf("期望total=77，实际=%v", got)
	}

	// 总分是派生字段，直接编辑被忽略
	ctrl.EditField(0, FieldTotal, "99")
	if got := ctrl.Records()[0].Num(FieldTotal); got != 77 {
		t.Errorf("派生字段不应接受直接编辑，实际=%v", got)
	}
}

func TestMarksResource_Semesters(t *testing.T) {
	backend := newStubBackend()
	backend.marks = dto.MarksResponse{
		Semesters: []dto.SemesterMarks{{Semester: 1}, {Semester: 3}},
	}
	res := setupTestResources(t, backend)

	semesters := res.Marks.Semesters(context.Background(), "")
	if len(semesters) != 2 || semesters[0] != 1 || semesters[1] != 3 {
		t.Errorf("期望[1 3]，实际=%v", semesters)
	}
}

// ── 课表测试 ──

func TestTimetableResource_Get_SortsWithinDay(t *testing.T) {
	backend := newStubBackend()
	backend.timetable = dto.TimetableResponse{
		Schedule: []dto.TimetableDay{
			{Day: "Monday", Classes: []dto.TimetableClass{
				{ID: "c-1", Time: "09:00", CourseID: "CS101"},
				{ID: "c-2", Time: "14:00", CourseID: "CS102"},
				{ID: "c-3", Time: "10:00", CourseID: "CS103"},
			}},
		},
	}
	res := setupTestResources(t, backend)

	resp := res.Timetable.Get(context.Background(), "")
	times := make([]string, 0, 3)
	for _, class := range resp.Schedule[0].Classes {
		times = append(times, class.Time)
	}
	want := []string{"09:00", "10:00", "14:00"}
	for i := range want {
		if times[i] != want[i] {
			t.Fatalf("期望时间顺序=%v，实际=%v", want, times)
		}
	}
}

func TestTimetableCollection_List_OrdersByDayThenTime(t *testing.T) {
	backend := newStubBackend()
	backend.timetable = dto.TimetableResponse{
		Schedule: []dto.TimetableDay{
			{Day: "Wednesday", Classes: []dto.TimetableClass{{ID: "c-3", Time: "09:00"}}},
			{Day: "Monday", Classes: []dto.TimetableClass{
				{ID: "c-2", Time: "11:00"},
				{ID: "c-1", Time: "09:00"},
			}},
		},
	}
	res := setupTestResources(t, backend)

	records, err := res.Timetable.Collection().List(context.Background(), collection.Selection{StudentID: "user-001"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	var got []string
	for _, rec := range records {
		got = append(got, rec.ID)
	}
	want := []string{"c-1", "c-2", "c-3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("期望顺序=%v，实际=%v", want, got)
		}
	}
}

func TestTimetableCollection_Delete(t *testing.T) {
	backend := newStubBackend()
	res := setupTestResources(t, backend)

	if err := res.Timetable.Collection().Delete(context.Background(), "c-9"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != "c-9" {
		t.Errorf("期望删除 c-9，实际=%v", backend.deleted)
	}
}

// ── 缴费测试 ──

func TestFeesCollection_Upsert_SemesterIsRowField(t *testing.T) {
	backend := newStubBackend()
	res := setupTestResources(t, backend)

	// 学期在行内编辑，父级选择只有学生
	rec := collection.NewRecord(NewFeeRow())
	rec.Fields[FieldSemester] = float64(2)
	rec.Fields[FieldAmount] = float64(45000)

	_, err := res.Fees.Collection().Upsert(context.Background(), collection.Selection{StudentID: "user-001"}, rec)
	if err != nil {
		t.Fatalf("Upsert 应成功: %v", err)
	}

	sent := backend.upserts[0].(*dto.FeeUpsert)
	if sent.Semester != 2 {
		t.Errorf("期望semester=2，实际=%d", sent.Semester)
	}
	if sent.Amount != 45000 {
		t.Errorf("期望amount=45000，实际=%v", sent.Amount)
	}
	if sent.Status != "pending" {
		t.Errorf("期望status=pending，实际=%s", sent.Status)
	}
}

func TestFeesCollection_List(t *testing.T) {
	backend := newStubBackend()
	backend.fees = dto.FeesResponse{
		Fees: []dto.FeeRecord{
			{ID: "fee-1", Semester: 1, Amount: 45000, Status: "paid"},
		},
	}
	res := setupTestResources(t, backend)

	records, err := res.Fees.Collection().List(context.Background(), collection.Selection{StudentID: "user-001"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(records) != 1 || records[0].ID != "fee-1" {
		t.Fatalf("期望1条fee-1，实际=%v", records)
	}
	if got := records[0].Num(FieldAmount); got != 45000 {
		t.Errorf("期望amount=45000，实际=%v", got)
	}
}

// ── 课程测试 ──

func TestCoursesCollection_UpsertCarriesID(t *testing.T) {
	backend := newStubBackend()
	res := setupTestResources(t, backend)

	rec := collection.NewRecord(NewCourseRow())
	rec.ID = "course-7"
	rec.Fields[FieldCourseID] = "CS101"

	_, err := res.Courses.Collection().Upsert(context.Background(), collection.Selection{}, rec)
	if err != nil {
		t.Fatalf("Upsert 应成功: %v", err)
	}

	// 编辑已有课程时必须带上 _id，否则后端会重复建课
	sent := backend.upserts[0].(*dto.CourseUpsert)
	if sent.ID != "course-7" {
		t.Errorf("期望_id=course-7，实际=%s", sent.ID)
	}
	if sent.CourseID != "CS101" {
		t.Errorf("期望courseId=CS101，实际=%s", sent.CourseID)
	}
}

func TestCoursesCollection_Delete(t *testing.T) {
	backend := newStubBackend()
	res := setupTestResources(t, backend)

	if err := res.Courses.Collection().Delete(context.Background(), "course-7"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if len(backend.deleted) != 1 || backend.deleted[0] != "course-7" {
		t.Errorf("期望删除 course-7，实际=%v", backend.deleted)
	}
}

// ── 学生管理测试 ──

func TestStudentsResource_ListAndGet(t *testing.T) {
	backend := newStubBackend()
	backend.students = []dto.Student{
		{ID: "stu-1", Name: "Alice", StudentID: "STU2023001", Email: "alice@example.com"},
		{ID: "stu-2", Name: "Bob", StudentID: "STU2023002", Email: "bob@example.com"},
	}
	res := setupTestResources(t, backend)

	students := res.Students.List(context.Background())
	if len(students) != 2 {
		t.Fatalf("期望2名学生，实际=%d", len(students))
	}

	got := res.Students.Get(context.Background(), "stu-2")
	if got == nil || got.Name != "Bob" {
		t.Errorf("期望Name=Bob，实际=%+v", got)
	}
	if missing := res.Students.Get(context.Background(), "stu-9"); missing != nil {
		t.Errorf("不存在的学生应降级为 nil，实际=%+v", missing)
	}
}

func TestStudentsResource_Update_Validation(t *testing.T) {
	backend := newStubBackend()
	res := setupTestResources(t, backend)

	err := res.Students.Update(context.Background(), "stu-1", dto.StudentUpdate{
		Name: "A", Email: "bad",
	})

	var verr *apierr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("期望 ValidationError，实际: %v", err)
	}
	if backend.hitCount("/user/students/stu-1") != 0 {
		t.Error("校验失败不应触达网络")
	}
}

// ── 个人资料测试 ──

func TestProfileResource_Get_PropagatesError(t *testing.T) {
	backend := newStubBackend()
	backend.failPaths["/profile"] = 500
	res := setupTestResources(t, backend)

	// 资料页要区分加载失败与资料为空，不做降级
	if _, err := res.Profile.Get(context.Background()); err == nil {
		t.Error("读失败应上抛错误")
	}
}

func TestProfileResource_Update_Success(t *testing.T) {
	backend := newStubBackend()
	res := setupTestResources(t, backend)

	updated, err := res.Profile.Update(context.Background(), dto.ProfileUpdate{
		Name: "Alice Chen", Email: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if updated.Name != "Alice Chen" {
		t.Errorf("期望Name=Alice Chen，实际=%s", updated.Name)
	}
}

func TestProfileResource_Update_Validation(t *testing.T) {
	backend := newStubBackend()
	res := setupTestResources(t, backend)

	_, err := res.Profile.Update(context.Background(), dto.ProfileUpdate{
		Name: "Alice", Email: "not-an-email",
	})

	var verr *apierr.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("期望 ValidationError，实际: %v", err)
	}
	if _, ok := verr.Fields["email"]; !ok {
		t.Errorf("期望 email 字段报错，实际=%v", verr.Fields)
	}
	if backend.hitCount("/profile") != 0 {
		t.Error("校验失败不应触达网络")
	}
}
