package ui

import "testing"

func TestEnabled(t *testing.T) {
	if !Enabled("", true) {
		t.Error("terminal without NO_COLOR should be styled")
	}
	if Enabled("1", true) || Enabled("", false) {
		t.Error("NO_COLOR or a pipe should disable styling")
	}
}

func TestDisable(t *testing.T) {
	saved := []string{ColorReset, ColorBold, ColorDim, ColorCyan, ColorGreen, ColorYellow, ColorWhite, ColorRed}
	defer func() {
		ColorReset, ColorBold, ColorDim, ColorCyan, ColorGreen, ColorYellow, ColorWhite, ColorRed =
			saved[0], saved[1], saved[2], saved[3], saved[4], saved[5], saved[6], saved[7]
	}()

	Disable()
	if got := Success("ok") + Bold("b") + Error("e") + Info("i"); got != "okbei" {
		t.Errorf("styled output after Disable() = %q", got)
	}
}
