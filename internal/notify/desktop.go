package notify

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Desktop shows an OS notification through the platform's stock tool.
type Desktop struct {
	IconPath string

	goos string
	run  func(name string, args ...string) error
}

func NewDesktop(iconPath string) *Desktop {
	return &Desktop{
		IconPath: iconPath,
		goos:     runtime.GOOS,
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
	}
}

func (d *Desktop) Notify(_ context.Context, n Notification) error {
	name, args := d.command(n)
	if err := d.run(name, args...); err != nil {
		return fmt.Errorf("desktop notify via %s: %w", name, err)
	}
	return nil
}

func (d *Desktop) command(n Notification) (string, []string) {
	switch d.goos {
	case "windows":
		esc := func(s string) string { return strings.ReplaceAll(s, "'", "''") }
		script := fmt.Sprintf(
			`[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] > $null; `+
				`$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent(1); `+
				`$text = $template.GetElementsByTagName('text'); `+
				`$text.Item(0).AppendChild($template.CreateTextNode('%s')) > $null; `+
				`$text.Item(1).AppendChild($template.CreateTextNode('%s')) > $null; `+
				`$toast = [Windows.UI.Notifications.ToastNotification]::new($template); `+
				`[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier('JobGo').Show($toast)`,
			esc(n.Title), esc(n.Message),
		)
		return "powershell", []string{"-NoProfile", "-Command", script}
	case "darwin":
		esc := func(s string) string { return strings.ReplaceAll(s, `"`, `\"`) }
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, esc(n.Message), esc(n.Title))
		return "osascript", []string{"-e", script}
	default:
		args := []string{}
		if d.IconPath != "" {
			args = append(args, "--icon", d.IconPath)
		}
		return "notify-send", append(args, n.Title, n.Message)
	}
}
