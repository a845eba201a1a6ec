package ui

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nconklindev/gopdon/internal/config"
	"github.com/nconklindev/gopdon/internal/history"
	"github.com/nconklindev/gopdon/internal/merger"
	"github.com/nconklindev/gopdon/internal/sheetio"
	"github.com/nconklindev/gopdon/internal/types"
)

type state int

const (
	stateFilePicker state = iota
	stateProcessing
	stateComplete
	stateError
	stateHistory
)

// Merger is the part of merger.Merger the UI drives.
type Merger interface {
	Merge(files [][]byte, platform types.Platform, progressChan chan<- float64) (*types.MergeResult, error)
}

// Deps are the collaborators the model needs. History may be nil.
type Deps struct {
	Merger  Merger
	History *history.Store
	Config  *config.Config
	Logger  *slog.Logger
}

type selectedFile struct {
	path string
	size int64
}

type Model struct {
	state        state
	deps         Deps
	filepicker   filepicker.Model
	platform     types.Platform
	files        []selectedFile
	notice       string
	result       *types.MergeResult
	outputPath   string
	err          error
	width        int
	height       int
	progress     progress.Model
	progressChan chan float64
	resultChan   chan mergeCompleteMsg
	now          func() time.Time
}

type mergeCompleteMsg struct {
	result     *types.MergeResult
	outputPath string
	err        error
}

type progressMsg float64

type waitForProgressMsg struct{}

func InitialModel(deps Deps) Model {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	fp := filepicker.New()
	fp.AllowedTypes = sheetio.Extensions
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(gold)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(gold)
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	return Model{
		state:      stateFilePicker,
		deps:       deps,
		filepicker: fp,
		platform:   types.Shopee,
		progress:   progress.New(progress.WithGradient("#E11D48", "#FCD34D")),
		now:        time.Now,
	}
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Leave room for the title, platform tabs, selected files and help.
		height := msg.Height - 16 - m.deps.Config.Merge.MaxFiles
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilePicker:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "tab":
				m.togglePlatform()
				return m, nil
			case "x":
				if len(m.files) > 0 {
					m.files = m.files[:len(m.files)-1]
				}
				m.notice = ""
				return m, nil
			case "v":
				m.state = stateHistory
				return m, nil
			case "m":
				if len(m.files) > 0 {
					m.state = stateProcessing
					return m.mergeFiles()
				}
				m.notice = "Chọn ít nhất một file trước khi gộp."
				return m, nil
			}

		case stateHistory:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "c":
				if m.deps.History != nil {
					if err := m.deps.History.Clear(); err != nil {
						m.deps.Logger.Warn("clearing history", "error", err)
					}
				}
				return m, nil
			case "esc", "enter", "v":
				m.state = stateFilePicker
				return m, nil
			}
			return m, nil

		case stateComplete, stateError:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			case "enter", "esc":
				if m.state == stateComplete {
					m.files = nil
				}
				m.result = nil
				m.err = nil
				m.notice = ""
				m.state = stateFilePicker
				return m, nil
			}
			return m, nil

		case stateProcessing:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil
		}

	case mergeCompleteMsg:
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.outputPath = msg.outputPath
		m.state = stateComplete
		return m, nil

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case progressMsg:
		if m.state == stateProcessing {
			cmd := m.progress.SetPercent(float64(msg))
			return m, tea.Batch(cmd, waitForProgress(m.progressChan, m.resultChan))
		}
		return m, nil

	case waitForProgressMsg:
		return m, waitForProgress(m.progressChan, m.resultChan)
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.addFile(path)
		}
		if didSelect, path := m.filepicker.DidSelectDisabledFile(msg); didSelect {
			m.notice = fmt.Sprintf("Chỉ chấp nhận file Excel (.xlsx, .xls): %s", filepath.Base(path))
		}

		return m, cmd
	}

	return m, nil
}

func (m *Model) togglePlatform() {
	if m.platform == types.Shopee {
		m.platform = types.TikTok
	} else {
		m.platform = types.Shopee
	}
}

// addFile queues path for merging, enforcing the per-merge file count and
// the per-file size limits.
func (m *Model) addFile(path string) {
	maxFiles := m.deps.Config.Merge.MaxFiles

	for _, f := range m.files {
		if f.path == path {
			m.notice = fmt.Sprintf("Đã chọn file này rồi: %s", filepath.Base(path))
			return
		}
	}
	if len(m.files) >= maxFiles {
		m.notice = fmt.Sprintf("Tối đa %d file mỗi lần.", maxFiles)
		return
	}
	if !sheetio.IsSpreadsheet(path) {
		m.notice = "Chỉ chấp nhận file Excel (.xlsx, .xls)."
		return
	}

	var size int64
	if info, err := os.Stat(path); err == nil {
		size = info.Size()
	}
	if maxSize := m.deps.Config.Merge.MaxFileSize; maxSize > 0 && size > maxSize {
		m.notice = fmt.Sprintf("File quá lớn (tối đa %s): %s", formatSize(maxSize), filepath.Base(path))
		return
	}
	m.files = append(m.files, selectedFile{path: path, size: size})
	m.notice = ""

	m.record(types.HistoryItem{
		Type:     types.HistoryUpload,
		Filename: filepath.Base(path),
		Platform: m.platform,
		Size:     size,
	})
}

func (m Model) record(item types.HistoryItem) {
	if m.deps.History == nil {
		return
	}
	if _, err := m.deps.History.Add(item); err != nil {
		m.deps.Logger.Warn("recording history", "error", err, "file", item.Filename)
	}
}

func (m Model) mergeFiles() (Model, tea.Cmd) {
	m.progressChan = make(chan float64, 100)
	m.resultChan = make(chan mergeCompleteMsg, 1)
	m.progress.SetPercent(0)

	cmd := tea.Batch(
		func() tea.Msg {
			// Capture everything the goroutine needs
			progressChan := m.progressChan
			resultChan := m.resultChan
			paths := make([]string, len(m.files))
			for i, f := range m.files {
				paths[i] = f.path
			}
			platform := m.platform
			outputDir := m.deps.Config.Merge.OutputDir
			outputPath := filepath.Join(outputDir, merger.OutputFileName(platform, m.now().UnixMilli()))

			go func() {
				res, err := runMerge(m.deps.Merger, paths, platform, outputPath, progressChan)
				if err == nil {
					m.record(types.HistoryItem{
						Type:     types.HistoryDownload,
						Filename: filepath.Base(outputPath),
						Platform: platform,
						Size:     int64(len(res.Data)),
						Count:    len(paths),
					})
				} else {
					m.deps.Logger.Error("merge failed", "error", err, "platform", platform, "files", len(paths))
				}

				resultChan <- mergeCompleteMsg{result: res, outputPath: outputPath, err: err}

				close(progressChan)
				close(resultChan)
			}()

			return waitForProgressMsg{}
		},
		waitForProgress(m.progressChan, m.resultChan),
		m.progress.Init(),
	)

	return m, cmd
}

// runMerge reads every file, merges them and writes the workbook to
// outputPath. Nothing is written unless the merge succeeds.
func runMerge(mg Merger, paths []string, platform types.Platform, outputPath string, progressChan chan<- float64) (*types.MergeResult, error) {
	files := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := sheetio.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		files = append(files, data)
	}

	res, err := mg.Merge(files, platform, progressChan)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return nil, err
	}
	if err := os.WriteFile(outputPath, res.Data, 0o644); err != nil {
		return nil, err
	}
	return res, nil
}

func waitForProgress(progressChan chan float64, resultChan chan mergeCompleteMsg) tea.Cmd {
	return func() tea.Msg {
		if progressChan == nil {
			return nil
		}

		p, ok := <-progressChan
		if !ok {
			// Progress channel closed, check result
			res, ok := <-resultChan
			if ok {
				return res
			}
			return nil
		}

		return progressMsg(p)
	}
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	case stateHistory:
		return m.viewHistory()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("🧧 Gộp Đơn Shopee / TikTok"))
	s.WriteString("\n")
	s.WriteString(platformTabs(m.platform))
	s.WriteString("\n\n")

	maxFiles := m.deps.Config.Merge.MaxFiles
	s.WriteString(SubtitleStyle.Render(fmt.Sprintf("Đã chọn %d/%d file", len(m.files), maxFiles)))
	s.WriteString("\n")
	for i, f := range m.files {
		s.WriteString(FileStyle.Render(fmt.Sprintf("  %d. %s (%s)", i+1, filepath.Base(f.path), formatSize(f.size))))
		s.WriteString("\n")
	}
	if m.notice != "" {
		s.WriteString(NoticeStyle.Render(m.notice))
		s.WriteString("\n")
	}

	s.WriteString("\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("enter: chọn file • tab: đổi nền tảng • x: bỏ file cuối • m: gộp • v: lịch sử • q: thoát"))

	return s.String()
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render(fmt.Sprintf("Đang xử lý đơn %s...", m.platform.Upper())))
	s.WriteString("\n\n")
	s.WriteString(m.progress.View())

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(SuccessStyle.Render(fmt.Sprintf("✓ Gộp đơn %s thành công!", m.result.Platform.Upper())))
	s.WriteString("\n\n")

	// Truncate paths if they're too long
	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}
	outputPath := truncateLeft(m.outputPath, maxPathLen)

	s.WriteString(fmt.Sprintf("File: %s\n", outputPath))
	s.WriteString(fmt.Sprintf("Sheet: %s\n", m.result.SheetName))
	s.WriteString(fmt.Sprintf("Số dòng: %d\n\n", m.result.Rows))

	for _, f := range m.result.Files {
		name := fmt.Sprintf("file %d", f.Index+1)
		if f.Index < len(m.files) {
			name = filepath.Base(m.files[f.Index].path)
		}
		if f.Skipped {
			s.WriteString(SubtitleStyle.Render(fmt.Sprintf("  %s: trống, bỏ qua", name)))
		} else {
			s.WriteString(fmt.Sprintf("  %s: %d dòng (%s)", name, f.Rows, f.Layout))
		}
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("enter: gộp tiếp • q: thoát"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Lỗi"))
	s.WriteString("\n\n")
	s.WriteString(m.err.Error())
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("enter: quay lại • q: thoát"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewHistory() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Lịch sử"))
	s.WriteString("\n\n")

	var items []types.HistoryItem
	if m.deps.History != nil {
		items = m.deps.History.List()
	}

	// Keep the list within the window
	limit := len(items)
	if m.height > 12 && limit > m.height-12 {
		limit = m.height - 12
	}

	if len(items) == 0 {
		s.WriteString(SubtitleStyle.Render("Chưa có hoạt động nào."))
		s.WriteString("\n")
	}
	for _, it := range items[:limit] {
		line := fmt.Sprintf("%s  %-8s %-7s %s", it.Timestamp.Local().Format("02/01 15:04"), it.Type, strings.ToUpper(string(it.Platform)), it.Filename)
		switch it.Type {
		case types.HistoryDownload:
			line += fmt.Sprintf(" (%d file)", it.Count)
			s.WriteString(SuccessStyle.Render(line))
		default:
			line += fmt.Sprintf(" (%s)", formatSize(it.Size))
			s.WriteString(FileStyle.Render(line))
		}
		s.WriteString("\n")
	}

	s.WriteString(HelpStyle.Render("c: xoá lịch sử • esc: quay lại • q: thoát"))

	return BoxStyle.Render(s.String())
}

// truncateLeft keeps the last max runes of s, marking the cut with "...".
func truncateLeft(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return "..." + string(r[len(r)-max+3:])
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
