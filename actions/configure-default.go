package actions

import (
	"fmt"
	"io"

	"github.com/relloyd/sparkify-dwh/config"
	"github.com/relloyd/sparkify-dwh/helper"
)

type DefaultAddConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Key        string       `errorTxt:"key" mandatory:"yes"`
	Value      string       `errorTxt:"value" mandatory:"yes"`
	Force      bool
	Out        io.Writer
}

type DefaultRemoveConfig struct {
	ConfigFile *config.File `errorTxt:"config-file" mandatory:"yes"`
	Key        string       `errorTxt:"key" mandatory:"yes"`
	Out        io.Writer
}

// RunDefaultAdd adds key+value to the given config file, creating the file if it does not exist.
// If cfg.Force is not set then it returns an error when the key exists.
func RunDefaultAdd(cfg *DefaultAddConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil { // if the basics were not supplied...
		return err
	}
	var val string
	if err := cfg.ConfigFile.Get(cfg.Key, &val); err == nil && !cfg.Force { // if key exists and we're not allowed to overwrite...
		return fmt.Errorf("key %q exists, use force to update the value or remove it first", cfg.Key)
	} else if err != nil && !config.IsNotFound(err) {
		return err
	}
	if err := cfg.ConfigFile.Set(cfg.Key, cfg.Value); err != nil {
		return fmt.Errorf("error writing config file after adding: %w", err)
	}
	_, _ = fmt.Fprintf(out(cfg.Out), "Key %q added to %q\n", cfg.Key, cfg.ConfigFile.FullPath)
	return nil
}

// RunDefaultRemove removes a key from the given config file.
func RunDefaultRemove(cfg *DefaultRemoveConfig) error {
	if err := helper.ValidateStructIsPopulated(cfg); err != nil {
		return err
	}
	if err := cfg.ConfigFile.Delete(cfg.Key); err != nil {
		return fmt.Errorf("unable to delete key %q from config: %w", cfg.Key, err)
	}
	_, _ = fmt.Fprintf(out(cfg.Out), "Key %q removed\n", cfg.Key)
	return nil
}

// RunDefaultList prints key=value for every default.
func RunDefaultList(f *config.File, w io.Writer) error {
	keys, err := f.GetAllKeys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		var val string
		if err := f.Get(k, &val); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(out(w), "%v=%v\n", k, val)
	}
	return nil
}
