package media

import "testing"

func TestKindForMime(t *testing.T) {
	cases := []struct {
		mime string
		want Kind
	}{
		{"image/jpeg", KindImage},
		{"image/png", KindImage},
		{"IMAGE/PNG", KindImage},
		{"image/webp", KindImage},
		{"image/gif", KindGifv},
		{"video/mp4", KindVideo},
		{"video/webm; codecs=vp9", KindVideo},
		{"audio/mpeg", KindAudio},
		{"audio/ogg", KindAudio},
		{"application/pdf", KindUnknown},
		{"", KindUnknown},
	}
	for _, tc := range cases {
		if got := KindForMime(tc.mime); got != tc.want {
			t.Errorf("KindForMime(%q) = %q, want %q", tc.mime, got, tc.want)
		}
	}
}

func TestKindSynchronous(t *testing.T) {
	if !KindImage.Synchronous() {
		t.Errorf("images must be processed inline")
	}
	for _, k := range []Kind{KindVideo, KindGifv, KindAudio, KindUnknown} {
		if k.Synchronous() {
			t.Errorf("%q must not be synchronous", k)
		}
	}
}
