package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"student-portal/client/config"
	"student-portal/client/internal/api"
	"student-portal/client/internal/export"
	"student-portal/client/internal/guard"
	"student-portal/client/internal/resource"
	"student-portal/client/internal/session"
	"student-portal/client/pkg/apierr"
	applogger "student-portal/client/pkg/logger"
)

const usage = `学生门户客户端

用法: portal [-config 路径] <命令> [参数]

账号:
  login [-role student|admin]   登录
  register                      注册学生账号
  logout                        退出登录
  whoami                        查看当前会话

学生视图:
  attendance                    考勤概览
  marks                         成绩单
  fees                          缴费明细
  courses                       课程列表
  timetable                     课表
  profile [update]              个人资料 / 更新资料
  export <timetable|marks|fees> 导出文件

管理端:
  students [show|update|delete <id>]       学生档案管理
  edit <attendance|marks|fees|timetable|courses>
                                交互式批量编辑
`

// app 聚合 CLI 运行所需的全部依赖
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	store    session.Store
	res      *resource.Resources
	nav      *guard.Navigator
	exporter *export.Exporter
	stdin    *bufio.Scanner
	out      io.Writer
}

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// 3. 会话存储与请求客户端
	store := session.NewFileStore(cfg.Session.Dir, logger)
	client := api.NewClient(&cfg.API, store, logger)

	// 4. 资源适配器与导航守卫
	res := resource.New(client, logger)
	nav := guard.NewNavigator(store, logger)
	nav.Start()

	a := &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		res:      res,
		nav:      nav,
		exporter: export.NewExporter(logger),
		stdin:    bufio.NewScanner(os.Stdin),
		out:      os.Stdout,
	}

	// 5. 分发子命令
	if err := a.dispatch(context.Background(), args[0], args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

// describeError 按错误分类给出面向用户的提示
func describeError(err error) string {
	if apierr.IsNetwork(err) {
		return "错误: " + apierr.ErrNetworkUnavailable.Error()
	}
	if reqErr, ok := apierr.IsRequestFailed(err); ok {
		return fmt.Sprintf("错误: %s (HTTP %d)", reqErr.Error(), reqErr.Status)
	}
	if apierr.IsMalformed(err) {
		return fmt.Sprintf("错误: %v，后端或网关可能未正常运行", err)
	}
	return fmt.Sprintf("错误: %v", err)
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "register":
		return a.cmdRegister(ctx)
	case "logout":
		return a.cmdLogout()
	case "whoami":
		return a.cmdWhoami()
	case "attendance":
		return a.cmdAttendance(ctx)
	case "marks":
		return a.cmdMarks(ctx)
	case "fees":
		return a.cmdFees(ctx)
	case "courses":
		return a.cmdCourses(ctx)
	case "timetable":
		return a.cmdTimetable(ctx)
	case "profile":
		return a.cmdProfile(ctx, args)
	case "export":
		return a.cmdExport(ctx, args)
	case "students":
		return a.cmdStudents(ctx, args)
	case "edit":
		return a.cmdEdit(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("未知命令 %q", command)
	}
}

// authorize 受保护命令的统一入口：角色不符时提示应去的页面
func (a *app) authorize(role string) error {
	decision := a.nav.Authorize(role)
	if decision.Allowed {
		return nil
	}
	if decision.RedirectTo == guard.PageLogin {
		return fmt.Errorf("尚未登录，请先执行 portal login")
	}
	return fmt.Errorf("当前身份无权访问该页面，请前往 %s", decision.RedirectTo)
}

// prompt 读取一行输入
func (a *app) prompt(label string) string {
	fmt.Fprintf(a.out, "%s: ", label)
	if !a.stdin.Scan() {
		return ""
	}
	return a.stdin.Text()
}

// confirm y/N 确认
func (a *app) confirm(label string) bool {
	answer := a.prompt(label + " [y/N]")
	return answer == "y" || answer == "Y"
}
