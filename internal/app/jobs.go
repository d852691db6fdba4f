package app

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// initJob starts the periodic store snapshot when backups are enabled.
func (a *Application) initJob() {
	if !a.appConfig.Backup.Enabled {
		return
	}
	a.sched = cron.New()
	spec := a.appConfig.Backup.Cron
	if _, err := a.sched.AddFunc(spec, a.backupStores); err != nil {
		zap.S().Errorf("backup job not scheduled, bad cron spec %q: %v", spec, err)
		a.sched = nil
		return
	}
	a.sched.Start()
	zap.S().Infof("backup job scheduled: %s", spec)
}

// backupStores copies the three collection files into a timestamped
// directory and prunes snapshots beyond the retention count.
func (a *Application) backupStores() {
	dir := filepath.Join(a.appConfig.BackupDir(), time.Now().Format("20060102T150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		zap.L().Error("backup dir create failed", zap.String("dir", dir), zap.Error(err))
		return
	}

	if err := a.products.BackupTo(dir); err != nil {
		zap.L().Error("products backup failed", zap.Error(err))
	}
	if err := a.users.BackupTo(dir); err != nil {
		zap.L().Error("users backup failed", zap.Error(err))
	}
	if err := a.orders.BackupTo(dir); err != nil {
		zap.L().Error("orders backup failed", zap.Error(err))
	}

	a.pruneBackups()
	zap.L().Info("store backup completed", zap.String("dir", dir))
}

func (a *Application) pruneBackups() {
	keep := a.appConfig.Backup.Keep
	if keep <= 0 {
		return
	}
	entries, err := os.ReadDir(a.appConfig.BackupDir())
	if err != nil {
		return
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) <= keep {
		return
	}
	// snapshot directory names are sortable timestamps, oldest first
	sort.Strings(names)
	for _, name := range names[:len(names)-keep] {
		path := filepath.Join(a.appConfig.BackupDir(), name)
		if err := os.RemoveAll(path); err != nil {
			zap.L().Error("backup prune failed", zap.String("dir", path), zap.Error(err))
		}
	}
}
