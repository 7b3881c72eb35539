package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"student-portal/client/internal/collection"
	"student-portal/client/internal/dto"
	"student-portal/client/internal/resource"
	"student-portal/client/internal/session"
)

// ── 学生档案管理 ──

func (a *app) cmdStudents(ctx context.Context, args []string) error {
	if err := a.authorize(session.RoleAdmin); err != nil {
		return err
	}

	if len(args) == 0 {
		return a.studentsList(ctx)
	}
	switch args[0] {
	case "show":
		if len(args) < 2 {
			return fmt.Errorf("用法: portal students show <id>")
		}
		return a.studentsShow(ctx, args[1])
	case "update":
		if len(args) < 2 {
			return fmt.Errorf("用法: portal students update <id>")
		}
		return a.studentsUpdate(ctx, args[1])
	case "delete":
		if len(args) < 2 {
			return fmt.Errorf("用法: portal students delete <id>")
		}
		return a.studentsDelete(ctx, args[1])
	default:
		return fmt.Errorf("未知子命令 %q", args[0])
	}
}

func (a *app) studentsList(ctx context.Context) error {
	students := a.res.Students.List(ctx)
	if len(students) == 0 {
		fmt.Fprintln(a.out, "暂无学生")
		return nil
	}

	w := a.table()
	fmt.Fprintln(w, "ID\t学号\t姓名\t邮箱\t院系")
	for _, s := range students {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.StudentID, s.Name, s.Email, s.Department)
	}
	return w.Flush()
}

func (a *app) studentsShow(ctx context.Context, id string) error {
	s := a.res.Students.Get(ctx, id)
	if s == nil {
		return fmt.Errorf("未找到学生 %q", id)
	}

	w := a.table()
	fmt.Fprintf(w, "学号\t%s\n", s.StudentID)
	fmt.Fprintf(w, "姓名\t%s\n", s.Name)
	fmt.Fprintf(w, "邮箱\t%s\n", s.Email)
	fmt.Fprintf(w, "电话\t%s\n", s.Phone)
	fmt.Fprintf(w, "院系\t%s\n", s.Department)
	return w.Flush()
}

func (a *app) studentsUpdate(ctx context.Context, id string) error {
	req := dto.StudentUpdate{
		Name:       a.prompt("姓名"),
		Email:      a.prompt("邮箱"),
		Phone:      a.prompt("电话（可留空）"),
		Department: a.prompt("院系（可留空）"),
	}
	if err := a.res.Students.Update(ctx, id, req); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "学生档案已更新")
	return nil
}

func (a *app) studentsDelete(ctx context.Context, id string) error {
	if !a.confirm("确认删除该学生及其全部记录?") {
		fmt.Fprintln(a.out, "已取消")
		return nil
	}
	if err := a.res.Students.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "已删除")
	return nil
}

// ── 交互式批量编辑 ──

// screenDef 一个可编辑管理页面的静态描述
type screenDef struct {
	adapter     collection.Adapter
	schema      collection.Schema
	defaults    func() map[string]any
	fields      []string
	perStudent  bool
	perSemester bool
}

func (a *app) screenFor(name string) (*screenDef, error) {
	switch name {
	case "attendance":
		return &screenDef{
			adapter:  a.res.Attendance.Collection(),
			schema:   resource.AttendanceSchema(),
			defaults: resource.NewAttendanceRow,
			fields: []string{
				resource.FieldSubject, resource.FieldAttended,
				resource.FieldTotalClass, resource.FieldPercentage,
			},
			perStudent: true,
		}, nil
	case "marks":
		return &screenDef{
			adapter:  a.res.Marks.Collection(),
			schema:   resource.MarksSchema(),
			defaults: resource.NewMarkRow,
			fields: []string{
				resource.FieldSubject, resource.FieldInternal,
				resource.FieldExternal, resource.FieldTotal, resource.FieldGrade,
			},
			perStudent:  true,
			perSemester: true,
		}, nil
	case "fees":
		return &screenDef{
			adapter:  a.res.Fees.Collection(),
			schema:   resource.FeesSchema(),
			defaults: resource.NewFeeRow,
			fields: []string{
				resource.FieldSemester, resource.FieldAmount,
				resource.FieldStatus, resource.FieldDueDate, resource.FieldPaidDate,
			},
			perStudent: true,
		}, nil
	case "timetable":
		return &screenDef{
			adapter:  a.res.Timetable.Collection(),
			schema:   resource.TimetableSchema(),
			defaults: resource.NewTimetableRow,
			fields: []string{
				resource.FieldDay, resource.FieldTime,
				resource.FieldCourseID, resource.FieldRoom,
			},
			perStudent: true,
		}, nil
	case "courses":
		return &screenDef{
			adapter:  a.res.Courses.Collection(),
			schema:   resource.CoursesSchema(),
			defaults: resource.NewCourseRow,
			fields: []string{
				resource.FieldCourseID, resource.FieldCourseName,
				resource.FieldFacultyName, resource.FieldDescription,
			},
		}, nil
	default:
		return nil, fmt.Errorf("不支持的编辑页面 %q", name)
	}
}

func (a *app) cmdEdit(ctx context.Context, args []string) error {
	if err := a.authorize(session.RoleAdmin); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("用法: portal edit <attendance|marks|fees|timetable|courses>")
	}

	screen, err := a.screenFor(args[0])
	if err != nil {
		return err
	}

	ctrl := collection.NewController(screen.adapter, screen.schema, a.logger)

	sel := collection.Selection{}
	if screen.perStudent {
		students := a.res.Students.List(ctx)
		if len(students) == 0 {
			return fmt.Errorf("暂无学生可编辑")
		}
		a.printStudents(students)
		sel.StudentID = a.pickStudent(students)
	}
	if screen.perSemester {
		sel.Semester = a.promptDefault("学期", "1")
	}
	if err := ctrl.SetSelection(ctx, sel); err != nil {
		fmt.Fprintln(a.out, "加载失败，当前列表为空")
	}

	fmt.Fprintln(a.out, `命令: edit <行号> <字段> <值> | add | del <行号> | save | refresh | student <id> | semester <n> | quit`)

	for {
		a.renderRecords(ctrl, screen.fields)

		line := a.prompt(">")
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "quit", "q":
			return nil

		case "edit":
			if len(parts) < 4 {
				fmt.Fprintln(a.out, "用法: edit <行号> <字段> <值>")
				continue
			}
			index, err := strconv.Atoi(parts[1])
			if err != nil || index < 0 || index >= len(ctrl.Records()) {
				fmt.Fprintln(a.out, "行号无效")
				continue
			}
			if screen.schema.IsDerived(parts[2]) {
				fmt.Fprintf(a.out, "%s 为派生字段，随依赖字段自动重算\n", parts[2])
				continue
			}
			ctrl.EditField(index, parts[2], strings.Join(parts[3:], " "))

		case "add":
			ctrl.AddRow(screen.defaults())

		case "del":
			if len(parts) < 2 {
				fmt.Fprintln(a.out, "用法: del <行号>")
				continue
			}
			index, err := strconv.Atoi(parts[1])
			if err != nil || index < 0 || index >= len(ctrl.Records()) {
				fmt.Fprintln(a.out, "行号无效")
				continue
			}
			rec := ctrl.Records()[index]
			if rec.ID == "" {
				fmt.Fprintln(a.out, "该行尚未保存，无法删除")
				continue
			}
			if !a.confirm("确认删除该行?") {
				continue
			}
			// 失败反馈走状态行
			_ = ctrl.DeleteRow(ctx, rec.ID)

		case "save":
			// 成功与失败都在状态行反馈
			_ = ctrl.Save(ctx)

		case "refresh", "r":
			if err := ctrl.Refresh(ctx); err != nil {
				fmt.Fprintln(a.out, "刷新失败，当前列表为空")
			}

		case "student":
			if !screen.perStudent || len(parts) < 2 {
				fmt.Fprintln(a.out, "该页面不按学生划分或缺少参数")
				continue
			}
			sel.StudentID = parts[1]
			if err := ctrl.SetSelection(ctx, sel); err != nil {
				fmt.Fprintln(a.out, "加载失败，当前列表为空")
			}

		case "semester":
			if !screen.perSemester || len(parts) < 2 {
				fmt.Fprintln(a.out, "该页面不按学期划分或缺少参数")
				continue
			}
			sel.Semester = parts[1]
			if err := ctrl.SetSelection(ctx, sel); err != nil {
				fmt.Fprintln(a.out, "加载失败，当前列表为空")
			}

		default:
			fmt.Fprintf(a.out, "未知命令 %q\n", parts[0])
		}
	}
}

func (a *app) printStudents(students []dto.Student) {
	w := a.table()
	fmt.Fprintln(w, "ID\t学号\t姓名")
	for _, s := range students {
		fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.StudentID, s.Name)
	}
	w.Flush()
}

// pickStudent 选择学生，直接回车取第一个
func (a *app) pickStudent(students []dto.Student) string {
	answer := a.promptDefault("学生 ID", students[0].ID)
	for _, s := range students {
		if s.ID == answer || s.StudentID == answer {
			return s.ID
		}
	}
	fmt.Fprintf(a.out, "未找到 %q，使用第一个学生\n", answer)
	return students[0].ID
}

func (a *app) promptDefault(label, fallback string) string {
	answer := strings.TrimSpace(a.prompt(fmt.Sprintf("%s (默认 %s)", label, fallback)))
	if answer == "" {
		return fallback
	}
	return answer
}

// renderRecords 渲染当前记录表与状态反馈行
func (a *app) renderRecords(ctrl *collection.Controller, fields []string) {
	records := ctrl.Records()
	if len(records) == 0 {
		fmt.Fprintln(a.out, "（暂无记录，输入 add 新增一行）")
	} else {
		w := a.table()
		fmt.Fprintf(w, "#\t%s\tID\n", strings.Join(fields, "\t"))
		for i, rec := range records {
			values := make([]string, 0, len(fields))
			for _, field := range fields {
				values = append(values, fieldText(rec, field))
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", i, strings.Join(values, "\t"), rec.ID)
		}
		w.Flush()
	}

	if status := ctrl.Status(); status.Kind != collection.StatusNone {
		fmt.Fprintln(a.out, status.Message)
	}
}

func fieldText(rec collection.Record, field string) string {
	if _, ok := rec.Fields[field].(float64); ok {
		return strconv.FormatFloat(rec.Num(field), 'f', -1, 64)
	}
	return rec.Str(field)
}
