package object

import "strings"

// Dictionary represents a PDF dictionary. Key order is kept only so that
// String output is stable; lookups ignore it.
type Dictionary struct {
	Keys   []string
	Values map[string]Value
}

// NewDictionary returns an empty dictionary
func NewDictionary() *Dictionary {
	return &Dictionary{
		Keys:   make([]string, 0),
		Values: make(map[string]Value),
	}
}

func (*Dictionary) Kind() Kind { return KindDictionary }
func (d *Dictionary) String() string {
	parts := make([]string, 0, len(d.Keys))
	for _, key := range d.Keys {
		parts = append(parts, Name(key).String()+" "+d.Values[key].String())
	}
	return "<<" + strings.Join(parts, " ") + ">>"
}

// Get returns the value stored under key, or Null when absent
func (d *Dictionary) Get(key string) Value {
	if obj, exists := d.Values[key]; exists {
		return obj
	}
	return Null{}
}

// Lookup returns the value stored under key and whether it was present
func (d *Dictionary) Lookup(key string) (Value, bool) {
	obj, exists := d.Values[key]
	return obj, exists
}

// Set stores value under key. A repeated key replaces the earlier value.
func (d *Dictionary) Set(key string, value Value) {
	if _, exists := d.Values[key]; !exists {
		d.Keys = append(d.Keys, key)
	}
	d.Values[key] = value
}

// Has reports whether key is present
func (d *Dictionary) Has(key string) bool {
	_, exists := d.Values[key]
	return exists
}

// Len returns the number of entries
func (d *Dictionary) Len() int {
	return len(d.Keys)
}

// GetName returns the name stored under key, or "" when absent or not a name
func (d *Dictionary) GetName(key string) string {
	if n, ok := d.Get(key).(Name); ok {
		return string(n)
	}
	return ""
}

// GetNumber returns the number stored under key
func (d *Dictionary) GetNumber(key string) (Number, bool) {
	n, ok := d.Get(key).(Number)
	return n, ok
}

// GetInt returns the integer stored under key, or 0
func (d *Dictionary) GetInt(key string) int {
	if n, ok := d.Get(key).(Number); ok {
		return n.Int()
	}
	return 0
}

// GetBool returns the boolean stored under key, or false
func (d *Dictionary) GetBool(key string) bool {
	if b, ok := d.Get(key).(Bool); ok {
		return bool(b)
	}
	return false
}

// GetArray returns the array stored under key
func (d *Dictionary) GetArray(key string) (Array, bool) {
	a, ok := d.Get(key).(Array)
	return a, ok
}

// GetDictionary returns the dictionary stored under key
func (d *Dictionary) GetDictionary(key string) (*Dictionary, bool) {
	dict, ok := d.Get(key).(*Dictionary)
	return dict, ok
}

// GetReference returns the reference stored under key
func (d *Dictionary) GetReference(key string) (Reference, bool) {
	r, ok := d.Get(key).(Reference)
	return r, ok
}
