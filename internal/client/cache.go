package client

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/tiemnho-dev/shift-roster/backend/internal/domain"
)

var (
	ErrNotCached        = errors.New("bản ghi không có trong bộ nhớ đệm, cần tải lại trước")
	ErrSegmentsRequired = errors.New("đăng ký không có giờ làm, cần nhập các đoạn ca")
)

// API 是 Cache 依赖的服务端操作，*Client 实现了它
type API interface {
	GetShiftPreferences(ctx context.Context, startDate, endDate domain.Date, employeeID *int64) ([]*domain.ShiftPreference, error)
	SubmitShiftPreference(ctx context.Context, input PreferenceInput) (*domain.ShiftPreference, error)
	DeleteShiftPreference(ctx context.Context, id int64) error
	ApproveShiftPreference(ctx context.Context, id int64, segments []Segment) (*ApproveResult, error)
	RejectShiftPreference(ctx context.Context, id int64, notes *string) (*domain.ShiftPreference, error)
	GetShifts(ctx context.Context, startDate, endDate domain.Date, employeeID *int64) ([]*domain.Shift, error)
	CreateShift(ctx context.Context, input ShiftInput) (*domain.Shift, error)
	UpdateShift(ctx context.Context, patch ShiftPatch) (*domain.Shift, error)
	DeleteShift(ctx context.Context, id int64) error
}

type preferenceKey struct {
	employeeID int64
	date       domain.Date
}

// Cache 是界面侧的乐观缓存：先在本地应用修改，再发请求；
// 请求失败时恢复修改前的条目，成功时用服务端返回的数据（id、时间戳等）替换本地猜测。
//
// 缓存中的条目一旦写入就不再原地修改，只会被整体替换，所以修改前保存旧指针就是快照。
// 回滚前会检查条目是否仍是本次写入的结果，被其他操作覆盖的条目不会回滚。
// 尚未得到服务端确认的新班次使用负数临时 id。
type Cache struct {
	api API
	now func() time.Time

	mu          sync.Mutex
	preferences map[preferenceKey]*domain.ShiftPreference
	shifts      map[int64]*domain.Shift
	lastTempID  int64
}

func NewCache(api API) *Cache {
	return &Cache{
		api:         api,
		now:         time.Now,
		preferences: make(map[preferenceKey]*domain.ShiftPreference),
		shifts:      make(map[int64]*domain.Shift),
	}
}

func (c *Cache) nextTempID() int64 {
	c.lastTempID--
	return c.lastTempID
}

// Load 从服务端重新拉取区间内的数据并替换整个缓存
func (c *Cache) Load(ctx context.Context, startDate, endDate domain.Date) error {
	preferences, err := c.api.GetShiftPreferences(ctx, startDate, endDate, nil)
	if err != nil {
		return err
	}
	shifts, err := c.api.GetShifts(ctx, startDate, endDate, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.preferences = make(map[preferenceKey]*domain.ShiftPreference, len(preferences))
	for _, p := range preferences {
		c.preferences[preferenceKey{p.EmployeeID, p.Date}] = p
	}
	c.shifts = make(map[int64]*domain.Shift, len(shifts))
	for _, s := range shifts {
		c.shifts[s.ID] = s
	}

	return nil
}

// Preferences 返回按日期、员工排序的副本
func (c *Cache) Preferences() []*domain.ShiftPreference {
	c.mu.Lock()
	defer c.mu.Unlock()

	preferences := make([]*domain.ShiftPreference, 0, len(c.preferences))
	for _, p := range c.preferences {
		preferences = append(preferences, clonePreference(p))
	}
	sort.Slice(preferences, func(i, j int) bool {
		if !preferences[i].Date.Equal(preferences[j].Date) {
			return preferences[i].Date.Before(preferences[j].Date)
		}
		return preferences[i].EmployeeID < preferences[j].EmployeeID
	})
	return preferences
}

// Shifts 返回按日期、开始时间、员工排序的副本
func (c *Cache) Shifts() []*domain.Shift {
	c.mu.Lock()
	defer c.mu.Unlock()

	shifts := make([]*domain.Shift, 0, len(c.shifts))
	for _, s := range c.shifts {
		shifts = append(shifts, cloneShift(s))
	}
	sort.Slice(shifts, func(i, j int) bool {
		a, b := shifts[i], shifts[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.EmployeeID < b.EmployeeID
	})
	return shifts
}

func (c *Cache) findPreference(id int64) (preferenceKey, *domain.ShiftPreference, bool) {
	for key, p := range c.preferences {
		if p.ID == id {
			return key, p, true
		}
	}
	return preferenceKey{}, nil, false
}

// restorePreference 仅当 key 对应的条目仍是 optimistic 时才恢复为 previous（nil 表示删除）
func (c *Cache) restorePreference(key preferenceKey, optimistic, previous *domain.ShiftPreference) {
	if c.preferences[key] != optimistic {
		return
	}
	if previous == nil {
		delete(c.preferences, key)
		return
	}
	c.preferences[key] = previous
}

func (c *Cache) SubmitPreference(ctx context.Context, input PreferenceInput) (*domain.ShiftPreference, error) {
	now := c.now()
	optimistic := &domain.ShiftPreference{
		EmployeeID: input.EmployeeID,
		Date:       input.Date,
		StartTime:  input.StartTime,
		EndTime:    input.EndTime,
		IsOff:      input.IsOff,
		Status:     domain.PreferenceStatusPending,
		Notes:      input.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := optimistic.Normalize(); err != nil {
		return nil, err
	}

	key := preferenceKey{input.EmployeeID, input.Date}

	c.mu.Lock()
	previous := c.preferences[key]
	if previous != nil {
		optimistic.ID = previous.ID
		optimistic.CreatedAt = previous.CreatedAt
	}
	c.preferences[key] = optimistic
	c.mu.Unlock()

	saved, err := c.api.SubmitShiftPreference(ctx, input)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.restorePreference(key, optimistic, previous)
		return nil, err
	}

	if c.preferences[key] == optimistic {
		c.preferences[key] = saved
	}
	return clonePreference(saved), nil
}

func (c *Cache) DeletePreference(ctx context.Context, id int64) error {
	c.mu.Lock()
	key, previous, ok := c.findPreference(id)
	if !ok {
		c.mu.Unlock()
		return ErrNotCached
	}
	delete(c.preferences, key)
	c.mu.Unlock()

	err := c.api.DeleteShiftPreference(ctx, id)
	if err == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.preferences[key]; !exists {
		c.preferences[key] = previous
	}
	return err
}

// ApprovePreference 本地先把登记标记为 approved 并加入临时班次。
// segments 为空时使用登记本身的时间，请假登记必须传入 segments。
func (c *Cache) ApprovePreference(ctx context.Context, id int64, segments []Segment) (*ApproveResult, error) {
	c.mu.Lock()
	key, previous, ok := c.findPreference(id)
	if !ok {
		c.mu.Unlock()
		return nil, ErrNotCached
	}

	optimistic := clonePreference(previous)
	if err := optimistic.Apply(domain.PreferenceEventApprove); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	local := segments
	if len(local) == 0 {
		if previous.IsOff || previous.StartTime == nil || previous.EndTime == nil {
			c.mu.Unlock()
			return nil, ErrSegmentsRequired
		}
		local = []Segment{{StartTime: *previous.StartTime, EndTime: *previous.EndTime}}
	}

	now := c.now()
	tempShifts := make([]*domain.Shift, 0, len(local))
	for _, segment := range local {
		shift := &domain.Shift{
			EmployeeID:   previous.EmployeeID,
			Date:         previous.Date,
			StartTime:    segment.StartTime,
			EndTime:      segment.EndTime,
			Position:     segment.Position,
			Notes:        segment.Notes,
			PreferenceID: &id,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := shift.Derive(); err != nil {
			c.mu.Unlock()
			return nil, err
		}
		tempShifts = append(tempShifts, shift)
	}

	optimistic.UpdatedAt = now
	c.preferences[key] = optimistic
	for _, s := range tempShifts {
		s.ID = c.nextTempID()
		c.shifts[s.ID] = s
	}
	c.mu.Unlock()

	result, err := c.api.ApproveShiftPreference(ctx, id, segments)

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range tempShifts {
		delete(c.shifts, s.ID)
	}

	if err != nil {
		c.restorePreference(key, optimistic, previous)
		return nil, err
	}

	if c.preferences[key] == optimistic {
		c.preferences[key] = result.Preference
	}
	for _, s := range result.Shifts {
		c.shifts[s.ID] = s
	}

	return &ApproveResult{
		Preference: clonePreference(result.Preference),
		Shifts:     cloneShifts(result.Shifts),
	}, nil
}

func (c *Cache) RejectPreference(ctx context.Context, id int64, notes *string) (*domain.ShiftPreference, error) {
	c.mu.Lock()
	key, previous, ok := c.findPreference(id)
	if !ok {
		c.mu.Unlock()
		return nil, ErrNotCached
	}

	optimistic := clonePreference(previous)
	if err := optimistic.Apply(domain.PreferenceEventReject); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if notes != nil {
		optimistic.Notes = *notes
	}
	optimistic.UpdatedAt = c.now()
	c.preferences[key] = optimistic
	c.mu.Unlock()

	rejected, err := c.api.RejectShiftPreference(ctx, id, notes)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.restorePreference(key, optimistic, previous)
		return nil, err
	}

	if c.preferences[key] == optimistic {
		c.preferences[key] = rejected
	}
	return clonePreference(rejected), nil
}

// CreateShift 带 preferenceId 时，服务端确认后本地的登记也会标记为 approved
func (c *Cache) CreateShift(ctx context.Context, input ShiftInput) (*domain.Shift, error) {
	now := c.now()
	optimistic := &domain.Shift{
		EmployeeID:   input.EmployeeID,
		Date:         input.Date,
		StartTime:    input.StartTime,
		EndTime:      input.EndTime,
		Position:     input.Position,
		Notes:        input.Notes,
		PreferenceID: input.PreferenceID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := optimistic.Derive(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	optimistic.ID = c.nextTempID()
	c.shifts[optimistic.ID] = optimistic
	c.mu.Unlock()

	created, err := c.api.CreateShift(ctx, input)

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.shifts, optimistic.ID)
	if err != nil {
		return nil, err
	}

	c.shifts[created.ID] = created

	if created.PreferenceID != nil {
		if key, p, ok := c.findPreference(*created.PreferenceID); ok {
			approved := clonePreference(p)
			if approved.Apply(domain.PreferenceEventApprove) == nil {
				c.preferences[key] = approved
			}
		}
	}

	return cloneShift(created), nil
}

// UpdateShift 本地按修改后的时间重新计算时长和班次类型
func (c *Cache) UpdateShift(ctx context.Context, patch ShiftPatch) (*domain.Shift, error) {
	c.mu.Lock()
	previous, ok := c.shifts[patch.ID]
	if !ok {
		c.mu.Unlock()
		return nil, ErrNotCached
	}

	optimistic := cloneShift(previous)
	if patch.Date != nil {
		optimistic.Date = *patch.Date
	}
	if patch.StartTime != nil {
		optimistic.StartTime = *patch.StartTime
	}
	if patch.EndTime != nil {
		optimistic.EndTime = *patch.EndTime
	}
	if patch.Position != nil {
		optimistic.Position = *patch.Position
	}
	if patch.Notes != nil {
		optimistic.Notes = *patch.Notes
	}
	if err := optimistic.Derive(); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	optimistic.UpdatedAt = c.now()
	c.shifts[patch.ID] = optimistic
	c.mu.Unlock()

	updated, err := c.api.UpdateShift(ctx, patch)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shifts[patch.ID] != optimistic {
		if err != nil {
			return nil, err
		}
		return cloneShift(updated), nil
	}

	if err != nil {
		c.shifts[patch.ID] = previous
		return nil, err
	}

	c.shifts[patch.ID] = updated
	return cloneShift(updated), nil
}

func (c *Cache) DeleteShift(ctx context.Context, id int64) error {
	c.mu.Lock()
	previous, ok := c.shifts[id]
	if !ok {
		c.mu.Unlock()
		return ErrNotCached
	}
	delete(c.shifts, id)
	c.mu.Unlock()

	err := c.api.DeleteShift(ctx, id)
	if err == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.shifts[id]; !exists {
		c.shifts[id] = previous
	}
	return err
}

func clonePreference(p *domain.ShiftPreference) *domain.ShiftPreference {
	if p == nil {
		return nil
	}
	cp := *p
	if p.StartTime != nil {
		start := *p.StartTime
		cp.StartTime = &start
	}
	if p.EndTime != nil {
		end := *p.EndTime
		cp.EndTime = &end
	}
	return &cp
}

func cloneShift(s *domain.Shift) *domain.Shift {
	if s == nil {
		return nil
	}
	cp := *s
	if s.PreferenceID != nil {
		id := *s.PreferenceID
		cp.PreferenceID = &id
	}
	return &cp
}

func cloneShifts(shifts []*domain.Shift) []*domain.Shift {
	cloned := make([]*domain.Shift, len(shifts))
	for i, s := range shifts {
		cloned[i] = cloneShift(s)
	}
	return cloned
}
