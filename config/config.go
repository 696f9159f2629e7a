package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"sync"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v2"
)

// Main holds default flag values and Connections holds named connections.
// Both live in the config home directory, ~/.sdw unless SDW_HOME is set.
var Main *File
var Connections *File

func init() {
	Main = NewConfigFileWithDir(mustGetConfigHomeDir(), MainFileFullName)
	Connections = NewConfigFileWithDir(mustGetConfigHomeDir(), ConnectionsConfigFileFullName)
}

const (
	MainDir                       = ".sdw"
	MainFileFullName              = "config.yaml"
	ConnectionsConfigFileFullName = "connections.yaml"
)

// FileNotFoundError denotes failing to find configuration file.
type FileNotFoundError struct {
	name string
}

// Error returns the formatted configuration error.
func (f FileNotFoundError) Error() string {
	return fmt.Sprintf("config file %q not found", f.name)
}

type KeyNotFoundError struct {
	configFile string
	key        string
}

func (k KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in config file %q", k.key, k.configFile)
}

// IsNotFound is true when err means the file or key is missing.
func IsNotFound(err error) bool {
	return errors.As(err, &FileNotFoundError{}) || errors.As(err, &KeyNotFoundError{})
}

// File is a YAML map of keys persisted through an EncryptedFile.
type File struct {
	Dirname      string
	FileName     string
	FullPath     string
	data         map[string]interface{}
	dataIsLoaded bool
	f            *EncryptedFile
	mu           sync.Mutex
}

func NewConfigFileWithDir(dirName string, filename string) *File {
	return &File{
		Dirname:  dirName,
		FileName: filename,
		FullPath: filepath.Join(dirName, filename),
		data:     make(map[string]interface{}),
		f:        NewEncryptedFile(dirName, filename),
	}
}

// Get will fetch the key from the config File into variable, out.
// Return KeyNotFoundError if we can't find the key.
func (c *File) Get(key string, out interface{}) error {
	if reflect.ValueOf(out).Kind() != reflect.Ptr {
		return errors.New("out must be a pointer")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadData(); err != nil && !errors.As(err, &FileNotFoundError{}) {
		return err
	}
	d, ok := c.data[key]
	if !ok {
		return KeyNotFoundError{c.FullPath, key}
	}
	return mapstructure.Decode(d, out)
}

func (c *File) Set(key string, val interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadData(); err != nil && !errors.As(err, &FileNotFoundError{}) { // a missing file is created below
		return err
	}
	c.data[key] = val
	return c.save(key)
}

func (c *File) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadData(); err != nil && !errors.As(err, &FileNotFoundError{}) {
		return err
	}
	if _, keyExists := c.data[key]; !keyExists {
		return KeyNotFoundError{c.FullPath, key}
	}
	delete(c.data, key)
	return c.save(key)
}

// GetAllKeys returns the sorted keys. A missing file has no keys.
func (c *File) GetAllKeys() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadData(); err != nil && !errors.As(err, &FileNotFoundError{}) {
		return nil, err
	}
	retval := make([]string, 0, len(c.data))
	for k := range c.data {
		retval = append(retval, k)
	}
	sort.Strings(retval)
	return retval, nil
}

func (c *File) save(key string) error {
	b, err := yaml.Marshal(c.data)
	if err != nil {
		return fmt.Errorf("error marshalling data while writing key %v to config file %v: %w", key, c.FullPath, err)
	}
	return c.f.Set(b)
}

// loadData reads the file once. Callers hold c.mu.
func (c *File) loadData() error {
	if c.dataIsLoaded {
		return nil
	}
	b, err := c.f.Get()
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(b, &c.data); err != nil {
		return fmt.Errorf("error reading config file %v: %w", c.FullPath, err)
	}
	if c.data == nil {
		c.data = make(map[string]interface{})
	}
	c.dataIsLoaded = true
	return nil
}
