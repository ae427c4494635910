package mock

// TaskQueue is a webshield.TaskRunner that only runs tasks when asked to
type TaskQueue struct {
	name    string
	tasks   []func()
	Stopped bool
	Posted  int
}

// MakeMockTaskQueue named name
func MakeMockTaskQueue(name string) *TaskQueue {
	return &TaskQueue{name: name, tasks: make([]func(), 0)}
}

func (q *TaskQueue) Name() string {
	return q.name
}

func (q *TaskQueue) Post(task func()) bool {
	if q.Stopped {
		return false
	}
	q.Posted++
	q.tasks = append(q.tasks, task)
	return true
}

// Len of tasks waiting to run
func (q *TaskQueue) Len() int {
	return len(q.tasks)
}

// RunAll tasks including ones posted while running, returns how many ran
func (q *TaskQueue) RunAll() int {
	ran := 0
	for len(q.tasks) > 0 {
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		task()
		ran++
	}
	return ran
}

// Drain runs both queues until neither has work left
func Drain(queues ...*TaskQueue) {
	for {
		ran := 0
		for _, q := range queues {
			ran += q.RunAll()
		}
		if ran == 0 {
			return
		}
	}
}
