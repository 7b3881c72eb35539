package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"student-portal/client/internal/dto"
	"student-portal/client/internal/session"
)

// ── 账号命令 ──

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	role := fs.String("role", session.RoleStudent, "登录身份 (student|admin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	identifier := a.prompt("学号或邮箱")
	password := a.prompt("密码")

	s, err := a.res.Auth.Login(ctx, identifier, password, *role)
	if err != nil {
		return err
	}

	landing, err := a.nav.Login(s)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "登录成功，欢迎 %s（%s）→ %s\n", s.Identity.Name, s.Role, landing)
	return nil
}

func (a *app) cmdRegister(ctx context.Context) error {
	req := dto.RegisterRequest{
		Name:      a.prompt("姓名"),
		StudentID: a.prompt("学号"),
		Email:     a.prompt("邮箱"),
		Password:  a.prompt("密码"),
		Phone:     a.prompt("电话（可留空）"),
	}
	if err := a.res.Auth.Register(ctx, req); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "注册成功，请登录")
	return nil
}

func (a *app) cmdLogout() error {
	landing := a.nav.Logout()
	fmt.Fprintf(a.out, "已退出登录 → %s\n", landing)
	return nil
}

func (a *app) cmdWhoami() error {
	s, err := a.store.Load()
	if err != nil || s == nil {
		fmt.Fprintln(a.out, "未登录")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> 角色: %s\n", s.Identity.Name, s.Identity.Email, s.Role)
	return nil
}

// ── 学生视图命令 ──

func (a *app) cmdAttendance(ctx context.Context) error {
	if err := a.authorize(session.RoleStudent); err != nil {
		return err
	}

	resp := a.res.Attendance.Get(ctx, "")
	if len(resp.Subjects) == 0 {
		fmt.Fprintln(a.out, "暂无考勤记录")
		return nil
	}

	w := a.table()
	fmt.Fprintln(w, "科目\t出勤\t总课时\t出勤率")
	for _, s := range resp.Subjects {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d%%\n", s.Subject, s.AttendedClasses, s.TotalClasses, s.Percentage)
	}
	if resp.Overall != nil {
		fmt.Fprintf(w, "合计\t%d\t%d\t%d%%\n", resp.Overall.AttendedClasses, resp.Overall.TotalClasses, resp.Overall.Percentage)
	}
	return w.Flush()
}

func (a *app) cmdMarks(ctx context.Context) error {
	if err := a.authorize(session.RoleStudent); err != nil {
		return err
	}

	resp := a.res.Marks.Get(ctx, "")
	if len(resp.Semesters) == 0 {
		fmt.Fprintln(a.out, "暂无成绩记录")
		return nil
	}

	w := a.table()
	for _, sem := range resp.Semesters {
		fmt.Fprintf(w, "第 %d 学期\t\t\t\t\n", sem.Semester)
		fmt.Fprintln(w, "科目\t平时\t考试\t总分\t等级")
		for _, sub := range sem.Subjects {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\n",
				sub.Subject, sub.InternalMarks, sub.ExternalMarks,
				sub.InternalMarks+sub.ExternalMarks, sub.Grade)
		}
	}
	return w.Flush()
}

func (a *app) cmdFees(ctx context.Context) error {
	if err := a.authorize(session.RoleStudent); err != nil {
		return err
	}

	resp := a.res.Fees.Get(ctx, "")
	if len(resp.Fees) == 0 {
		fmt.Fprintln(a.out, "暂无缴费记录")
		return nil
	}

	w := a.table()
	fmt.Fprintln(w, "学期\t金额\t状态\t截止日期\t缴费日期")
	for _, fee := range resp.Fees {
		fmt.Fprintf(w, "%d\t%.2f\t%s\t%s\t%s\n", fee.Semester, fee.Amount, fee.Status, fee.DueDate, fee.PaidDate)
	}
	if resp.Summary != nil {
		fmt.Fprintf(w, "合计\t%.2f\t已缴 %.2f\t待缴 %.2f\t\n",
			resp.Summary.TotalAmount, resp.Summary.PaidAmount, resp.Summary.Pending)
	}
	return w.Flush()
}

func (a *app) cmdCourses(ctx context.Context) error {
	if err := a.authorize(session.RoleStudent); err != nil {
		return err
	}

	resp := a.res.Courses.List(ctx)
	if len(resp.Courses) == 0 {
		fmt.Fprintln(a.out, "暂无课程")
		return nil
	}

	w := a.table()
	fmt.Fprintln(w, "编号\t名称\t任课教师\t简介")
	for _, c := range resp.Courses {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.CourseID, c.CourseName, c.FacultyName, c.Description)
	}
	return w.Flush()
}

func (a *app) cmdTimetable(ctx context.Context) error {
	if err := a.authorize(session.RoleStudent); err != nil {
		return err
	}

	resp := a.res.Timetable.Get(ctx, "")
	empty := true

	w := a.table()
	for _, day := range resp.Schedule {
		if len(day.Classes) == 0 {
			continue
		}
		empty = false
		fmt.Fprintf(w, "%s\t\t\t\n", day.Day)
		for _, class := range day.Classes {
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", class.Time, class.CourseID, class.Subject, class.Room)
		}
	}
	if empty {
		fmt.Fprintln(a.out, "暂无课表")
		return nil
	}
	return w.Flush()
}

func (a *app) cmdProfile(ctx context.Context, args []string) error {
	if err := a.authorize(session.RoleStudent); err != nil {
		return err
	}

	if len(args) > 0 && args[0] == "update" {
		req := dto.ProfileUpdate{
			Name:  a.prompt("姓名"),
			Email: a.prompt("邮箱"),
			Phone: a.prompt("电话（可留空）"),
		}
		profile, err := a.res.Profile.Update(ctx, req)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "资料已更新: %s <%s>\n", profile.Name, profile.Email)
		return nil
	}

	profile, err := a.res.Profile.Get(ctx)
	if err != nil {
		return err
	}

	w := a.table()
	fmt.Fprintf(w, "姓名\t%s\n", profile.Name)
	fmt.Fprintf(w, "学号\t%s\n", profile.StudentID)
	fmt.Fprintf(w, "邮箱\t%s\n", profile.Email)
	fmt.Fprintf(w, "电话\t%s\n", profile.Phone)
	fmt.Fprintf(w, "院系\t%s\n", profile.Department)
	return w.Flush()
}

// ── 导出命令 ──

func (a *app) cmdExport(ctx context.Context, args []string) error {
	if err := a.authorize(session.RoleStudent); err != nil {
		return err
	}
	if len(args) == 0 {
		return fmt.Errorf("用法: portal export <timetable|marks|fees>")
	}

	owner := ""
	if s := a.nav.Session(); s != nil {
		owner = s.Identity.Name
	}

	var (
		buf      interface{ Bytes() []byte }
		filename string
		err      error
	)
	switch args[0] {
	case "timetable":
		buf, filename, err = a.exporter.ExportTimetable(a.res.Timetable.Get(ctx, ""), owner)
	case "marks":
		buf, filename, err = a.exporter.ExportMarks(a.res.Marks.Get(ctx, ""), owner)
	case "fees":
		buf, filename, err = a.exporter.ExportFees(a.res.Fees.Get(ctx, ""), owner)
	default:
		return fmt.Errorf("不支持的导出类型 %q", args[0])
	}
	if err != nil {
		return err
	}

	path := filepath.Join(a.cfg.Export.Dir, filename)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("写入导出文件失败: %w", err)
	}
	fmt.Fprintf(a.out, "已导出 %s\n", path)
	return nil
}

func (a *app) table() *tabwriter.Writer {
	return tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
}
