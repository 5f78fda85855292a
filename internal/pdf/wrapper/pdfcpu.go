package wrapper

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Preflight reads the document structure with pdfcpu in relaxed mode and
// returns its page count. It rejects files whose cross-reference table or
// page tree cannot be read, and encrypted files.
func Preflight(path string) (pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &WrapperError{Library: LibraryPDFCPU, Op: "preflight", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	file, err := os.Open(path)
	if err != nil {
		return 0, &WrapperError{Library: LibraryPDFCPU, Op: "preflight", Err: err}
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	ctx, err := api.ReadContext(file, conf)
	if err != nil {
		return 0, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "preflight",
			Err:     fmt.Errorf("failed to read PDF context: %w", err),
		}
	}

	if ctx.Encrypt != nil {
		return 0, &WrapperError{Library: LibraryPDFCPU, Op: "preflight", Err: fmt.Errorf("document is encrypted")}
	}

	if err := ctx.EnsurePageCount(); err != nil {
		return 0, &WrapperError{
			Library: LibraryPDFCPU,
			Op:      "preflight",
			Err:     fmt.Errorf("failed to ensure page count: %w", err),
		}
	}

	return ctx.PageCount, nil
}
