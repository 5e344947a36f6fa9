package sitebook

import (
	"bytes"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func TestValidateFile(t *testing.T) {
	testCases := []struct {
		name, mime string
		size       int64
		want       error
	}{
		{"bill.pdf", "application/pdf", 1024, nil},
		{"photo.jpg", "image/jpeg", MaxFileSize, nil},
		{"photo.jpg", "image/jpeg", MaxFileSize + 1, ErrFileTooLarge},
		{"movie.mp4", "video/mp4", 10, ErrUnsupportedType},
		{"", "text/plain", 10, ErrNoFile},
	}
	for _, tc := range testCases {
		if err := ValidateFile(tc.name, tc.mime, tc.size); !errors.Is(err, tc.want) {
			t.Errorf("ValidateFile(%q, %q, %d) = %v, want %v", tc.name, tc.mime, tc.size, err, tc.want)
		}
	}
}

func TestMimeType(t *testing.T) {
	for name, want := range map[string]string{
		"bill.PDF":     "application/pdf",
		"site.jpeg":    "image/jpeg",
		"budget.xlsx":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"notes.txt":    "text/plain",
		"no-extension": "",
	} {
		if got := MimeType(name); got != want {
			t.Errorf("MimeType(%q) = %q, want %q", name, got, want)
		}
	}
}

func TestEncode(t *testing.T) {
	fixClock(t, day)
	fsys := fstest.MapFS{
		"receipts/bill.pdf": {Data: []byte("%PDF-1.4")},
		"big.png":           {Data: bytes.Repeat([]byte{0}, MaxFileSize+1)},
		"song.mp3":          {Data: []byte("ID3")},
	}

	got := PendingUpload{Path: "receipts/bill.pdf"}.Encode(fsys)
	want := EncodedUpload{Attachment: Attachment{
		ID:         "id-1",
		Name:       "bill.pdf",
		Type:       "application/pdf",
		Size:       8,
		Data:       "data:application/pdf;base64,JVBERi0xLjQ=",
		UploadedAt: day,
	}}
	if diff := cmp.Diff(Upload(want), got); diff != "" {
		t.Errorf("Encode() mismatch (-want +got):\n%s", diff)
	}

	for path, wantErr := range map[string]error{
		"big.png":  ErrFileTooLarge,
		"song.mp3": ErrUnsupportedType,
	} {
		got := PendingUpload{Path: path}.Encode(fsys)
		failed, ok := got.(FailedUpload)
		if !ok {
			t.Fatalf("Encode(%q) = %T, want FailedUpload", path, got)
		}
		if !errors.Is(failed.Err, wantErr) {
			t.Errorf("Encode(%q) error = %v, want %v", path, failed.Err, wantErr)
		}
	}
	if _, ok := (PendingUpload{Path: "missing.pdf"}).Encode(fsys).(FailedUpload); !ok {
		t.Errorf("Encode(missing) did not fail")
	}
}

func TestAttach(t *testing.T) {
	fixClock(t, day)
	existing := []Attachment{{ID: "a"}, {ID: "b"}}
	ok := EncodeBytes("c.txt", "text/plain", []byte("hello"))
	failed := EncodeBytes("d.exe", "application/octet-stream", []byte("MZ"))

	got, err := Attach(existing, []Upload{ok, failed}, 5)
	if !errors.Is(err, ErrUnsupportedType) {
		t.Errorf("Attach() error = %v, want ErrUnsupportedType", err)
	}
	if len(got) != 3 || got[2].Name != "c.txt" {
		t.Errorf("Attach() = %+v, want the encoded file appended", got)
	}
	if len(existing) != 2 {
		t.Errorf("Attach() modified existing")
	}

	// the whole batch is rejected when it does not fit.
	got, err = Attach(existing, []Upload{ok, ok, ok, ok}, 5)
	if !errors.Is(err, ErrTooManyFiles) {
		t.Errorf("Attach() error = %v, want ErrTooManyFiles", err)
	}
	if len(got) != 2 {
		t.Errorf("Attach() = %d attachments, want the existing ones", len(got))
	}

	if got := Detach(existing, "a"); len(got) != 1 || got[0].ID != "b" || existing[0].ID != "a" {
		t.Errorf("Detach() = %+v, existing = %+v", got, existing)
	}
}

func TestDecodeData(t *testing.T) {
	mime, content, err := DecodeData(DataURL("text/csv", []byte("a,b\n1,2\n")))
	if err != nil {
		t.Fatal(err)
	}
	if mime != "text/csv" || string(content) != "a,b\n1,2\n" {
		t.Errorf("DecodeData() = %q, %q", mime, content)
	}
	for _, bad := range []string{"", "data:text/plain,hello", "data:text/plain;base64", "data:text/plain;base64,!!"} {
		if _, _, err := DecodeData(bad); err == nil {
			t.Errorf("DecodeData(%q) succeeded", bad)
		}
	}
}

func TestFormatFileSize(t *testing.T) {
	for size, want := range map[int64]string{
		0:                      "0 Bytes",
		500:                    "500 Bytes",
		1024:                   "1 KB",
		1536:                   "1.5 KB",
		MaxFileSize:            "5 MB",
		3 * 1024 * 1024 * 1024: "3 GB",
	} {
		if got := FormatFileSize(size); got != want {
			t.Errorf("FormatFileSize(%d) = %q, want %q", size, got, want)
		}
	}
}

func TestFileExtension(t *testing.T) {
	for name, want := range map[string]string{
		"bill.pdf":       "pdf",
		"archive.tar.gz": "gz",
		"README":         "",
		".env":           "",
	} {
		if got := FileExtension(name); got != want {
			t.Errorf("FileExtension(%q) = %q, want %q", name, got, want)
		}
	}
	if !IsImage("image/png") || IsImage("application/pdf") || !IsPDF("application/pdf") {
		t.Errorf("IsImage/IsPDF misclassify")
	}
}
