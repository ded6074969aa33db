package jobqueue

import (
	"context"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
)

// Task is a background job run on a fixed interval.
type Task struct {
	Name     string
	Interval time.Duration
	// Timeout bounds one run. Zero means the interval.
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Locker elects one runner per task across instances sharing a Redis.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Manager runs the background tasks of the process
type Manager struct {
	tasks   []Task
	locker  Locker
	stopCh  chan struct{}
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

// NewManager returns a stopped manager. locker may be nil, in which case every
// instance runs every task.
func NewManager(locker Locker, tasks ...Task) *Manager {
	return &Manager{tasks: tasks, locker: locker}
}

// Start starts one worker per task
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return
	}

	// Recreate stop channel for each start cycle so manager can be restarted safely.
	m.stopCh = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.running = true
	log.Info("[JobQueue Manager] Starting background tasks")

	for _, task := range m.tasks {
		if task.Interval <= 0 || task.Run == nil {
			log.Warnf("[JobQueue Manager] Skipping task %q without interval or run func", task.Name)
			continue
		}
		m.wg.Add(1)
		go m.worker(ctx, task, m.stopCh)
	}

	log.Info("[JobQueue Manager] Started successfully")
}

// Stop stops the background tasks and waits for running ones to return
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	log.Info("[JobQueue Manager] Stopping background tasks...")

	close(m.stopCh)
	m.cancel()
	m.stopCh = nil
	m.running = false

	m.wg.Wait()

	log.Info("[JobQueue Manager] Stopped successfully")
}

// IsRunning returns whether the manager is currently running
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Manager) worker(ctx context.Context, task Task, stopCh <-chan struct{}) {
	defer m.wg.Done()
	ticker := time.NewTicker(task.Interval)
	defer ticker.Stop()
	log.Infof("[JobQueue Manager] Started %s worker (interval: %s)", task.Name, task.Interval)

	for {
		select {
		case <-stopCh:
			log.Infof("[JobQueue Manager] %s worker stopping", task.Name)
			return
		case <-ticker.C:
			m.runOnce(ctx, task)
		}
	}
}

// RunOnce runs the named task immediately, honoring the lock.
func (m *Manager) RunOnce(ctx context.Context, name string) bool {
	for _, task := range m.tasks {
		if task.Name == name {
			return m.runOnce(ctx, task)
		}
	}
	return false
}

func (m *Manager) runOnce(ctx context.Context, task Task) bool {
	timeout := task.Timeout
	if timeout <= 0 {
		timeout = task.Interval
	}

	if m.locker != nil {
		ok, err := m.locker.TryLock(ctx, "jobqueue:lock:"+task.Name, timeout)
		if err != nil {
			log.Warnf("[JobQueue Manager] %s lock failed: %v", task.Name, err)
			return false
		}
		if !ok {
			log.Debugf("[JobQueue Manager] %s already running elsewhere", task.Name)
			return false
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	log.Debugf("[JobQueue Manager] Running %s", task.Name)
	if err := task.Run(runCtx); err != nil {
		log.Errorf("[JobQueue Manager] %s error: %v", task.Name, err)
	}
	return true
}
