package components

import (
	"strings"

	"github.com/Rorical/QuickPane/internal/models"
	"github.com/Rorical/QuickPane/internal/popup"
	"github.com/Rorical/QuickPane/ui/styles"
)

// RenderResident is the view while the popup is hidden: a single quiet line
// proving the process is alive and which key brings the popup back.
func RenderResident(appModel *models.AppModel) string {
	line := "quickpane · " + appModel.HotkeyDesc + " or ctrl+t to open"
	if appModel.Generation == models.StatusStreaming {
		line += " · generating"
	}
	return styles.ResidentStyle().Render(line)
}

// RenderPopup draws the chat overlay. During transitions the frame is pushed
// down by the controller's offset and its contents are dimmed, which reads as
// the slide-and-fade of the original window.
func RenderPopup(appModel *models.AppModel, ctl *popup.Controller) string {
	width := appModel.Width
	if width < 20 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(RenderMessages(appModel.Messages, appModel.ShowSystem))
	b.WriteString(RenderInput(appModel.Input, width))
	b.WriteString("\n")
	b.WriteString(RenderStatus(appModel, width-4))

	dimmed := ctl.Opacity() < 1
	frame := styles.PopupFrameStyle(width, appModel.Generation == models.StatusStreaming, appModel.SpinnerPos, dimmed)
	body := frame.Render(b.String())
	if dimmed {
		body = styles.DimStyle().Render(body)
	}

	return strings.Repeat("\n", ctl.Offset()) + body
}
