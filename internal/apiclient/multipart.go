package apiclient

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/templui/securefiles/internal/model"
)

// Multipart is a request body sent as multipart/form-data: each file as a
// part named FileField, plus plain form fields.
type Multipart struct {
	FileField string
	Files     []model.UploadFile
	Fields    map[string]string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// uploadBody is the read side of a streamed multipart form.
type uploadBody struct {
	*io.PipeReader
	done chan struct{}
	err  error // set before done is closed
}

// open streams the form through a pipe so file contents are never buffered
// in memory. The writer goroutine ends when the body is fully read or
// closed; the transport closes it even when the request fails.
func (m *Multipart) open() (*uploadBody, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	body := &uploadBody{PipeReader: pr, done: make(chan struct{})}

	go func() {
		err := m.write(mw)
		var srcErr *sourceError
		if errors.As(err, &srcErr) {
			body.err = srcErr
		}
		close(body.done)
		_ = pw.CloseWithError(err)
	}()

	return body, mw.FormDataContentType()
}

// sourceErr returns the local read failure that aborted the upload, if the
// writer has finished with one.
func (b *uploadBody) sourceErr() error {
	if b == nil {
		return nil
	}
	select {
	case <-b.done:
		return b.err
	default:
		return nil
	}
}

// sourceError is a failure reading a local file, as opposed to writing
// into the request.
type sourceError struct {
	Name string
	Err  error
}

func (e *sourceError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Name, e.Err)
}

func (e *sourceError) Unwrap() error {
	return e.Err
}

// trackedReader remembers the last read error of the wrapped reader.
type trackedReader struct {
	r   io.Reader
	err error
}

func (t *trackedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}
	return n, err
}

func (m *Multipart) write(mw *multipart.Writer) error {
	for key, value := range m.Fields {
		if err := mw.WriteField(key, value); err != nil {
			return err
		}
	}

	for _, f := range m.Files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(m.FileField), quoteEscaper.Replace(f.Name)))
		contentType := f.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)

		part, err := mw.CreatePart(h)
		if err != nil {
			return err
		}
		src := &trackedReader{r: f.Content}
		if _, err := io.Copy(part, src); err != nil {
			if src.err != nil {
				return &sourceError{Name: f.Name, Err: src.err}
			}
			return err
		}
	}

	return mw.Close()
}
