package components

import (
	"strings"

	"github.com/Rorical/QuickPane/internal/models"
	"github.com/Rorical/QuickPane/ui/styles"
)

func RenderStatus(appModel *models.AppModel, width int) string {
	statusStyle := styles.StatusStyle(width)

	statusContent := appModel.Status
	if appModel.Generation == models.StatusStreaming {
		statusContent += strings.Repeat(".", appModel.SpinnerPos)
	}
	statusContent += "  [" + appModel.Model + "]"

	return statusStyle.Render(statusContent)
}
