package account

import (
	"fmt"
)

// Store loads and saves the whole account collection.
//
// Lock takes an exclusive lock covering one load-mutate-save span and
// returns the function that releases it.
type Store interface {
	Load() (*Collection, error)
	Save(c *Collection) error
	Lock() (unlock func(), err error)
}

// MatchOutcome tells whether a single-record operation found its target.
type MatchOutcome int

const (
	NotMatched MatchOutcome = iota
	Matched
)

func (o MatchOutcome) String() string {
	if o == Matched {
		return "matched"
	}
	return "not matched"
}

// Result is returned by Edit and Delete. Record is the edited record after
// the merge, or the removed record; it is zero when Outcome is NotMatched.
type Result struct {
	Outcome MatchOutcome
	Record  Record
}

// Matched reports whether the operation found a record.
func (r Result) Matched() bool {
	return r.Outcome == Matched
}

// Manager applies account operations to a Store.
type Manager struct {
	store    Store
	defaults Defaults
	password func() string
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDefaults sets the values new records start from. Empty fields keep
// the built-in defaults.
func WithDefaults(d Defaults) ManagerOption {
	return func(m *Manager) {
		m.defaults = d.withFallback()
	}
}

// WithPasswordFunc sets the password generator used by Add.
func WithPasswordFunc(fn func() string) ManagerOption {
	return func(m *Manager) {
		m.password = fn
	}
}

// NewManager creates a manager over store.
func NewManager(store Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    store,
		defaults: BuiltinDefaults(),
		password: GeneratePassword,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// update runs fn between a locked load and save. The collection is only
// written when fn returns save == true and no error.
func (m *Manager) update(fn func(c *Collection) (save bool, err error)) error {
	unlock, err := m.store.Lock()
	if err != nil {
		return fmt.Errorf("locking account database: %w", err)
	}
	defer unlock()

	c, err := m.store.Load()
	if err != nil {
		return err
	}

	save, err := fn(c)
	if err != nil || !save {
		return err
	}

	if err := m.store.Save(c); err != nil {
		return fmt.Errorf("saving account database: %w", err)
	}
	return nil
}

// Add appends a new record built from the defaults overlaid with input.
// A password is generated when input has none. If any existing record
// shares the user or the port of input, Add returns a *ConflictError
// naming that record and nothing is written.
func (m *Manager) Add(input Patch) (Record, error) {
	passwd := ""
	if input.Passwd == nil {
		passwd = m.password()
	}
	rec := m.defaults.NewRecord(passwd)
	input.Apply(&rec)

	err := m.update(func(c *Collection) (bool, error) {
		for _, row := range c.Records {
			if input.Collides(row) {
				return false, &ConflictError{User: row.User, Port: row.Port}
			}
		}
		c.Records = append(c.Records, rec)
		return true, nil
	})
	if err != nil {
		return Record{}, err
	}
	return rec.Clone(), nil
}

// Edit merges every field present in patch onto the first record matching
// it. The collection is rewritten whether or not a record matched.
func (m *Manager) Edit(patch Patch) (Result, error) {
	var res Result
	err := m.update(func(c *Collection) (bool, error) {
		for i := range c.Records {
			if patch.Matches(c.Records[i]) {
				patch.Apply(&c.Records[i])
				res = Result{Outcome: Matched, Record: c.Records[i].Clone()}
				break
			}
		}
		return true, nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Delete removes the first record matching selector. At most one record is
// removed per call. The collection is rewritten whether or not a record
// matched.
func (m *Manager) Delete(selector Patch) (Result, error) {
	var res Result
	err := m.update(func(c *Collection) (bool, error) {
		for i, row := range c.Records {
			if selector.Matches(row) {
				res = Result{Outcome: Matched, Record: row.Clone()}
				c.Records = append(c.Records[:i], c.Records[i+1:]...)
				break
			}
		}
		return true, nil
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

// Clear resets the upload and download counters of every record matching
// selector and returns the cleared records.
func (m *Manager) Clear(selector Patch) ([]Record, error) {
	var cleared []Record
	reset := Patch{U: Ptr[int64](0), D: Ptr[int64](0)}
	err := m.update(func(c *Collection) (bool, error) {
		for i := range c.Records {
			if selector.Matches(c.Records[i]) {
				reset.Apply(&c.Records[i])
				cleared = append(cleared, c.Records[i].Clone())
			}
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return cleared, nil
}

// List returns every record when selector is empty, otherwise the records
// matching it. It never writes.
func (m *Manager) List(selector Patch) ([]Record, error) {
	c, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, c.Len())
	for _, row := range c.Records {
		if selector.IsEmpty() || selector.Matches(row) {
			records = append(records, row.Clone())
		}
	}
	return records, nil
}
