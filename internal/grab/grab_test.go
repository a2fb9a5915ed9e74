package grab

import (
	"image"
	"testing"
)

func TestFindMonitor(t *testing.T) {
	mons := []MonitorInfo{
		{Index: 0, Name: "HDMI-1", Rect: image.Rect(0, 0, 1920, 1080)},
		{Index: 1, Name: "eDP-1", Rect: image.Rect(1920, 0, 3840, 1080), Primary: true},
	}
	cases := map[string]string{
		"":        "HDMI-1",
		"primary": "eDP-1",
		"#1":      "eDP-1",
		"0":       "HDMI-1",
		"edp":     "eDP-1",
	}
	for sel, want := range cases {
		got, err := FindMonitor(mons, sel)
		if err != nil || got.Name != want {
			t.Errorf("FindMonitor(%q) = %v, %v; want %s", sel, got.Name, err, want)
		}
	}
	if _, err := FindMonitor(mons, "7"); err == nil {
		t.Errorf("out of range index accepted")
	}
	if _, err := FindMonitor(nil, ""); err == nil {
		t.Errorf("empty list accepted")
	}
}

func TestParseRect(t *testing.T) {
	r, err := ParseRect("10, 20,30,40")
	if err != nil || r != image.Rect(10, 20, 40, 60) {
		t.Fatalf("ParseRect = %v, %v", r, err)
	}
	for _, bad := range []string{"1,2,3", "a,b,c,d", "0,0,0,5"} {
		if _, err := ParseRect(bad); err == nil {
			t.Errorf("ParseRect(%q) accepted", bad)
		}
	}
}
