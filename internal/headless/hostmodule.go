package headless

import (
	"context"

	"github.com/tetratelabs/wazero/api"

	"github.com/lite-xl/webshell/internal/logger"
)

// hostModuleName is the import module a program uses to reach the upload and
// download hooks:
//
//	(import "webshell" "upload_files" (func (param i32 i32)))
//	(import "webshell" "download_files" (func (param i32 i32)))
//
// Both take a guest path as a pointer and length into the program's memory.
// An empty path means the home directory. Programs that do not import the
// module run unchanged.
const hostModuleName = "webshell"

func (r *wasiRuntime) instantiateHostModule(ctx context.Context) error {
	_, err := r.runtime.NewHostModuleBuilder(hostModuleName).
		NewFunctionBuilder().WithFunc(r.pathHook("upload_files", r.onUpload)).Export("upload_files").
		NewFunctionBuilder().WithFunc(r.pathHook("download_files", r.onDownload)).Export("download_files").
		Instantiate(ctx)
	return err
}

// pathHook reads the path argument on the program's goroutine and hands it
// to fn on the loop.
func (r *wasiRuntime) pathHook(name string, fn func(string)) func(context.Context, api.Module, uint32, uint32) {
	return func(_ context.Context, m api.Module, ptr, size uint32) {
		mem := m.Memory()
		if mem == nil {
			logger.Warnf("%s: module has no memory", name)
			return
		}
		buf, ok := mem.Read(ptr, size)
		if !ok {
			logger.Warnf("%s: path out of range (offset %d, length %d)", name, ptr, size)
			return
		}
		p := string(buf)
		logger.Debugf("%s %q", name, p)
		if fn != nil {
			r.loop.post(func() { fn(p) })
		}
	}
}
