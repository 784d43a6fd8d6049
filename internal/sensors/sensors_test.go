package sensors

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestSyntheticLayoutKinds(t *testing.T) {
	l := SyntheticLayout()

	if len(l.Channels) == 0 {
		t.Fatal("synthetic layout is empty")
	}

	mags := l.ByKind(Mag)
	grads := l.ByKind(Grad)
	eegs := l.ByKind(EEG)
	if len(mags) == 0 || len(grads) == 0 || len(eegs) == 0 {
		t.Fatalf("missing channel kinds: %d mag, %d grad, %d eeg",
			len(mags), len(grads), len(eegs))
	}

	for _, ch := range mags {
		// Magnetometers are radial: orientation parallel to position.
		cosAngle := ch.Pos.Normalize().Dot(ch.Ori.Normalize())
		if math.Abs(cosAngle-1) > 1e-9 {
			t.Errorf("%s orientation not radial (cos=%v)", ch.Name, cosAngle)
		}
	}

	for _, ch := range eegs {
		if ch.Pos.Norm() > 0.1 {
			t.Errorf("%s electrode radius %v, want on scalp", ch.Name, ch.Pos.Norm())
		}
	}
}

func TestLoadLayoutValidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.yaml")

	bad := "channels:\n  - name: CH1\n    kind: banana\n    pos: {x: 0, y: 0, z: 0.1}\n"
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLayout(path); err == nil {
		t.Error("expected error for unknown channel kind")
	}

	good := "channels:\n  - name: CH1\n    kind: mag\n    pos: {x: 0, y: 0, z: 0.11}\n    ori: {x: 0, y: 0, z: 1}\n"
	if err := os.WriteFile(path, []byte(good), 0644); err != nil {
		t.Fatal(err)
	}
	l, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	if l.Channels[0].Pos.Z != 0.11 {
		t.Errorf("parsed pos.z = %v", l.Channels[0].Pos.Z)
	}
}

func TestEvokedPeakSample(t *testing.T) {
	layout := SyntheticLayout()
	ev := SyntheticEvoked(layout)

	peak := ev.PeakSample()
	tPeak := ev.Times[peak]
	// The synthetic response peaks at 100 ms.
	if math.Abs(tPeak-0.1) > 0.011 {
		t.Errorf("peak at %v s, want ~0.1", tPeak)
	}
}

func TestEvokedValuesAt(t *testing.T) {
	layout := SyntheticLayout()
	ev := SyntheticEvoked(layout)

	mags := layout.ByKind(Mag)
	vals := ev.ValuesAt(ev.PeakSample(), mags)
	if len(vals) != len(mags) {
		t.Fatalf("got %d values for %d channels", len(vals), len(mags))
	}

	nonzero := 0
	for _, v := range vals {
		if v != 0 {
			nonzero++
		}
	}
	if nonzero == 0 {
		t.Error("peak values are all zero")
	}

	// Out-of-range sample reads as zeros, not a panic.
	zeros := ev.ValuesAt(-1, mags)
	for _, v := range zeros {
		if v != 0 {
			t.Fatal("out-of-range sample should read as zero")
		}
	}
}

func TestEvokedRoundTrip(t *testing.T) {
	layout := SyntheticLayout()
	ev := SyntheticEvoked(layout)

	path := filepath.Join(t.TempDir(), "evoked.yaml")
	if err := SaveEvoked(ev, path); err != nil {
		t.Fatalf("SaveEvoked: %v", err)
	}

	loaded, err := LoadEvoked(path)
	if err != nil {
		t.Fatalf("LoadEvoked: %v", err)
	}
	if len(loaded.Times) != len(ev.Times) {
		t.Errorf("times = %d, want %d", len(loaded.Times), len(ev.Times))
	}
	if len(loaded.Channels) != len(ev.Channels) {
		t.Errorf("channels = %d, want %d", len(loaded.Channels), len(ev.Channels))
	}
}

func TestLoadEvokedLengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "evoked.yaml")
	bad := "times: [0.0, 0.1]\nchannels:\n  CH1: [1.0]\n"
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadEvoked(path); err == nil {
		t.Error("expected error for sample-count mismatch")
	}
}
