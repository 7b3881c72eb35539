package export

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"student-portal/client/internal/dto"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoTimetable  = errors.New("课表为空，无可导出内容")
	ErrExportNoMarks      = errors.New("暂无成绩记录，无可导出内容")
	ErrExportNoFees       = errors.New("暂无缴费记录，无可导出内容")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// 课表时段未标注时长时按一节课一小时计
const defaultClassDuration = time.Hour

var weekdayIndex = map[string]time.Weekday{
	"Sunday":    time.Sunday,
	"Monday":    time.Monday,
	"Tuesday":   time.Tuesday,
	"Wednesday": time.Wednesday,
	"Thursday":  time.Thursday,
	"Friday":    time.Friday,
	"Saturday":  time.Saturday,
}

// Exporter 导出器
//
// 设计说明：
//   - 课表导出为 iCalendar (.ics)：每个时段生成一个 VEVENT，
//     落在该星期几的下一次出现日期上，可直接导入日历应用
//   - 成绩导出为 .xlsx：每学期一个 Sheet
//   - 缴费导出为 .xlsx：单 Sheet，末尾带汇总行
//   - 均以 buffer + 建议文件名返回，写盘由调用方决定
type Exporter struct {
	logger *zap.Logger
	now    func() time.Time // 测试可注入
}

// NewExporter 创建导出器
func NewExporter(logger *zap.Logger) *Exporter {
	return &Exporter{logger: logger, now: time.Now}
}

// ════════════════════════════════════════════════════════════
// ExportTimetable — 课表导出为 iCalendar
// ════════════════════════════════════════════════════════════

func (e *Exporter) ExportTimetable(timetable *dto.TimetableResponse, ownerName string) (*bytes.Buffer, string, error) {
	total := 0
	for _, day := range timetable.Schedule {
		total += len(day.Classes)
	}
	if total == 0 {
		return nil, "", ErrExportNoTimetable
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//student-portal//timetable//EN")

	now := e.now()
	for _, day := range timetable.Schedule {
		weekday, ok := weekdayIndex[day.Day]
		if !ok {
			e.logger.Warn("忽略无法识别的星期", zap.String("day", day.Day))
			continue
		}
		date := nextWeekday(now, weekday)

		for _, class := range day.Classes {
			start, err := atTime(date, class.Time)
			if err != nil {
				e.logger.Warn("忽略时间格式异常的时段",
					zap.String("day", day.Day),
					zap.String("time", class.Time),
				)
				continue
			}

			summary := class.Subject
			if summary == "" {
				summary = class.CourseID
			}

			event := cal.AddEvent(uuid.New().String())
			event.SetCreatedTime(now)
			event.SetDtStampTime(now)
			event.SetStartAt(start)
			event.SetEndAt(start.Add(defaultClassDuration))
			event.SetSummary(summary)
			if class.Room != "" {
				event.SetLocation(class.Room)
			}
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("timetable_%s.ics", safeName(ownerName))
	return buf, filename, nil
}

// ════════════════════════════════════════════════════════════
// ExportMarks — 成绩导出为 Excel
// ════════════════════════════════════════════════════════════
//
// 每学期一个 Sheet，行：科目 / 平时分 / 考试分 / 总分 / 等级

func (e *Exporter) ExportMarks(marks *dto.MarksResponse, ownerName string) (*bytes.Buffer, string, error) {
	if len(marks.Semesters) == 0 {
		return nil, "", ErrExportNoMarks
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sem := range marks.Semesters {
		sheet := fmt.Sprintf("Semester %d", sem.Semester)
		idx, err := f.NewSheet(sheet)
		if err != nil {
			e.logger.Error("创建 Sheet 失败", zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		if i == 0 {
			f.SetActiveSheet(idx)
		}

		f.SetColWidth(sheet, "A", "A", 28)
		f.SetColWidth(sheet, "B", "E", 12)

		headers := []string{"Subject", "Internal", "External", "Total", "Grade"}
		for col, h := range headers {
			f.SetCellValue(sheet, cell(col, 1), h)
		}

		row := 2
		for _, sub := range sem.Subjects {
			f.SetCellValue(sheet, cell(0, row), sub.Subject)
			f.SetCellValue(sheet, cell(1, row), sub.InternalMarks)
			f.SetCellValue(sheet, cell(2, row), sub.ExternalMarks)
			f.SetCellValue(sheet, cell(3, row), sub.InternalMarks+sub.ExternalMarks)
			f.SetCellValue(sheet, cell(4, row), sub.Grade)
			row++
		}
	}
	f.DeleteSheet("Sheet1")

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		e.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("marks_%s.xlsx", safeName(ownerName))
	return buf, filename, nil
}

// ════════════════════════════════════════════════════════════
// ExportFees — 缴费记录导出为 Excel
// ════════════════════════════════════════════════════════════

func (e *Exporter) ExportFees(fees *dto.FeesResponse, ownerName string) (*bytes.Buffer, string, error) {
	if len(fees.Fees) == 0 {
		return nil, "", ErrExportNoFees
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Fees"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		e.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "E", 14)

	headers := []string{"Semester", "Amount", "Status", "Due Date", "Paid Date"}
	for col, h := range headers {
		f.SetCellValue(sheet, cell(col, 1), h)
	}

	row := 2
	var total float64
	for _, fee := range fees.Fees {
		f.SetCellValue(sheet, cell(0, row), fee.Semester)
		f.SetCellValue(sheet, cell(1, row), fee.Amount)
		f.SetCellValue(sheet, cell(2, row), fee.Status)
		f.SetCellValue(sheet, cell(3, row), fee.DueDate)
		f.SetCellValue(sheet, cell(4, row), fee.PaidDate)
		total += fee.Amount
		row++
	}

	f.SetCellValue(sheet, cell(0, row), "Total")
	f.SetCellValue(sheet, cell(1, row), total)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		e.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("fees_%s.xlsx", safeName(ownerName))
	return buf, filename, nil
}

// ── 辅助函数 ──

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col+1, row)
	return name
}

// nextWeekday 返回 now 之后（含当天）最近一个指定星期几的日期
func nextWeekday(now time.Time, weekday time.Weekday) time.Time {
	days := (int(weekday) - int(now.Weekday()) + 7) % 7
	return now.AddDate(0, 0, days)
}

// atTime 把 "HH:MM" 套到指定日期上
func atTime(date time.Time, hhmm string) (time.Time, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return time.Time{}, fmt.Errorf("时间格式无效: %q", hhmm)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("时间格式无效: %q", hhmm)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, fmt.Errorf("时间格式无效: %q", hhmm)
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}

func safeName(name string) string {
	if name == "" {
		return "student"
	}
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', ':':
			return '_'
		default:
			return r
		}
	}, name)
}
