package pkg

import "testing"

func TestDensityFileName(t *testing.T) {
	tests := []struct {
		d    Density
		want string
	}{
		{Density{Label: XXXHDPI, Width: 640, Height: 640}, "xxxhdpi_640x640.png"},
		{Density{Label: XXHDPI, Width: 480, Height: 480}, "xxhdpi_480x480.png"},
		{Density{Label: XHDPI, Width: 320, Height: 320}, "xhdpi_320x320.png"},
		{Density{Label: HDPI, Width: 240, Height: 240}, "hdpi_240x240.png"},
		{Density{Label: MDPI, Width: 160, Height: 160}, "mdpi_160x160.png"},
		{Density{Label: HDPI, Width: 36, Height: 24}, "hdpi_36x24.png"},
	}
	for _, tt := range tests {
		if got := tt.d.FileName(); got != tt.want {
			t.Errorf("FileName() = %q, want %q", got, tt.want)
		}
	}
}

func TestDefaultSizeTable(t *testing.T) {
	want := []string{
		"xxxhdpi_640x640.png",
		"xxhdpi_480x480.png",
		"xhdpi_320x320.png",
		"hdpi_240x240.png",
		"mdpi_160x160.png",
	}
	table := DefaultSizeTable()
	if len(table) != len(want) {
		t.Fatalf("len = %d, want %d", len(table), len(want))
	}
	for i, d := range table {
		if d.FileName() != want[i] {
			t.Errorf("entry %d = %s, want %s", i, d.FileName(), want[i])
		}
	}

	// callers get their own copy
	table[0].Width = 1
	if DefaultSizeTable()[0].Width != 640 {
		t.Error("DefaultSizeTable shares state between calls")
	}
}

func TestSizeTableClone(t *testing.T) {
	if SizeTable(nil).Clone() != nil {
		t.Error("Clone of nil should be nil")
	}
	orig := DefaultSizeTable()
	c := orig.Clone()
	c[1].Label = MDPI
	if orig[1].Label != XXHDPI {
		t.Error("Clone shares backing array with the original")
	}
}
