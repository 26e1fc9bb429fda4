package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/mariadb-tools/innodb-surgeon/internal/redolog"
)

// inspectApp is the interactive TUI inspector: a scrollable list of decoded
// MTR chain records on the left, the selected record's detail on the right,
// adapted from the teacher's list+detail+footer layout (spec §9 supplement:
// redo logs are large enough that a flat stdout dump is hard to navigate).
type inspectApp struct {
	app         *tview.Application
	recordList  *tview.List
	detailsText *tview.TextView
	footer      *tview.TextView
	decoded     *redolog.Decoded
}

func runInspect(args []string) int {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	logFilePath := fs.String("log-file-path", "", "Path to the redo log file")
	if err := fs.Parse(args); err != nil {
		return exitInvalidArgument
	}
	if *logFilePath == "" {
		fmt.Fprintln(os.Stderr, "Error: --log-file-path is required")
		return exitInvalidArgument
	}

	decoded, err := redolog.DecodeFile(*logFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFormatError
	}

	a := newInspectApp(decoded)
	if err := a.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitIOError
	}
	return exitOK
}

func newInspectApp(decoded *redolog.Decoded) *inspectApp {
	a := &inspectApp{app: tview.NewApplication(), decoded: decoded}

	a.recordList = tview.NewList().ShowSecondaryText(false)
	a.recordList.SetBorder(true).SetTitle(" MTR chain ")

	a.detailsText = tview.NewTextView()
	a.detailsText.SetDynamicColors(true).SetWordWrap(true)
	a.detailsText.SetBorder(true).SetTitle(" Record detail ")

	a.footer = tview.NewTextView()
	a.footer.SetTextAlign(tview.AlignCenter)
	a.footer.SetText("Up/Down: navigate  Enter: detail  q/Esc: quit")

	for i, rec := range decoded.Records {
		label := fmt.Sprintf("[%d] lsn=%d %s", i, rec.StartLSN, rec.MTR.Family)
		idx := i
		a.recordList.AddItem(label, "", 0, func() {
			a.showDetail(idx)
		})
	}

	a.recordList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			a.app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' {
				a.app.Stop()
				return nil
			}
		}
		return event
	})

	mainFlex := tview.NewFlex().
		AddItem(a.recordList, 0, 1, true).
		AddItem(a.detailsText, 0, 2, false)

	rootFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(mainFlex, 0, 1, true).
		AddItem(a.footer, 1, 0, false)

	a.app.SetRoot(rootFlex, true)
	if len(decoded.Records) > 0 {
		a.showDetail(0)
	}
	return a
}

func (a *inspectApp) showDetail(index int) {
	if index < 0 || index >= len(a.decoded.Records) {
		return
	}
	rec := a.decoded.Records[index]
	text := fmt.Sprintf("lsn: %d\nfamily: %s\nopcode: 0x%02x\nspace_id: %d\npage_no: %d\npayload_len: %d\nrecord_len: %d",
		rec.StartLSN, rec.MTR.Family, rec.MTR.Opcode, rec.MTR.SpaceID, rec.MTR.PageNo, len(rec.MTR.Payload), rec.MTR.Length)
	if rec.MTR.Family == redolog.FamilyFileCheckpoint {
		text += fmt.Sprintf("\nfile_checkpoint_lsn: %d", rec.MTR.FileCheckpointLSN)
	}
	if rec.MTR.Family == redolog.FamilyMemset {
		text += fmt.Sprintf("\nfill_length: %d", rec.MTR.FillLength)
	}
	a.detailsText.SetText(text)
}

func (a *inspectApp) Run() error {
	return a.app.Run()
}
