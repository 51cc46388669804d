// Package watcher 监听配置根目录的 YAML 变更并触发防抖刷新。
//
// fsnotify 的监听不递归，构造时逐目录添加，之后新建的子目录在
// Create 事件中补挂。多个事件在防抖窗口内合并为一次回调；回调里
// 的刷新总是读取磁盘上的最新快照，与进行中的差异计算不共享可变
// 状态。
package watcher

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher 防抖的目录监听器。
type Watcher struct {
	fs        *fsnotify.Watcher
	debounce  time.Duration
	onChange  func()
	done      chan struct{}
	closeOnce sync.Once
}

// New 创建并启动监听器，onChange 在防抖窗口结束后于监听 goroutine 上调用。
func New(root string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}

		return nil
	})
	if err != nil {
		_ = fsw.Close()

		return nil, err
	}

	w := &Watcher{
		fs:       fsw,
		debounce: debounce,
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.loop()

	return w, nil
}

// Close 停止监听，可安全重复调用。已排队但未触发的回调被丢弃。
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})

	return err
}

func (w *Watcher) loop() {
	timer := time.NewTimer(time.Hour)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if w.handle(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			slog.Warn("File watcher error", "error", err)
		case <-timer.C:
			w.onChange()
		case <-w.done:
			return
		}
	}
}

// handle 处理单个事件，返回是否应触发刷新。
func (w *Watcher) handle(event fsnotify.Event) bool {
	// 新建目录补挂监听；vim 等编辑器的 rename→create 也走这里
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.fs.Add(event.Name); err != nil {
				slog.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}

			return false
		}
	}

	return Relevant(event.Name, event.Op)
}

// Relevant 判断事件是否涉及 YAML 文档的增删改。
func Relevant(name string, op fsnotify.Op) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if ext != ".yaml" && ext != ".yml" {
		return false
	}

	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) ||
		op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}
