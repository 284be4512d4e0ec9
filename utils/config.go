package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// StructToMap converts a struct to a map via JSON encode/decode
func StructToMap(someStruct interface{}) (map[string]interface{}, error) {
	jsonbytes, err := json.MarshalIndent(someStruct, "", "  ")
	if err != nil {
		return nil, err
	}
	ret := make(map[string]interface{})
	err = json.Unmarshal(jsonbytes, &ret)

	if err != nil {
		return nil, err
	}
	return ret, nil
}

// MergeJsonWithDefaults overwrites the fields of configStruct with the values given in jsonBytes
func MergeJsonWithDefaults(jsonBytes []byte, configStruct interface{}) error {
	valueMap, err := StructToMap(configStruct)
	if err != nil {
		return err
	}
	err = json.Unmarshal(jsonBytes, &valueMap)
	if err != nil {
		return err
	}
	mergedBytes, err := json.Marshal(valueMap)
	if err != nil {
		return err
	}
	return json.Unmarshal(mergedBytes, configStruct)
}

// ReadSectionWithDefaults merges the section of the config file into configStruct. If the section does not
// exist, the defaults are added and the new content of the config file is returned. The returned slice is
// empty if the file content does not need to change.
func ReadSectionWithDefaults(jsonBytes []byte, sectionName string, configStruct interface{}) ([]byte, error) {
	sectionsMap := make(map[string]interface{})
	var retbytes []byte

	err := json.Unmarshal(jsonBytes, &sectionsMap)

	if err != nil {
		return retbytes, err
	}
	if sectionsMap[sectionName] == nil {
		sectionsMap[sectionName], err = StructToMap(configStruct)
		if err != nil {
			return retbytes, err
		}
		return json.Marshal(sectionsMap)
	}
	sectionBytes, err := json.Marshal(sectionsMap[sectionName])
	if err != nil {
		return retbytes, err
	}

	return retbytes, MergeJsonWithDefaults(sectionBytes, configStruct)
}

// ConfigReader reads sections of a JSON or YAML config file and adds missing sections with their defaults
type ConfigReader struct {
	logger            log.FieldLogger
	configFilePath    string
	configFileContent []byte
	yaml              bool
	lck               sync.Mutex
}

// NewConfigReader reads the config file, a missing file is created once the first section was read
func NewConfigReader(logger log.FieldLogger, configFilePath string) (*ConfigReader, error) {
	ext := strings.ToLower(filepath.Ext(configFilePath))
	c := &ConfigReader{logger: logger, configFilePath: configFilePath, yaml: ext == ".yaml" || ext == ".yml"}

	byteValue, err := os.ReadFile(configFilePath)
	if errors.Is(err, os.ErrNotExist) {
		logger.Infof("Config file %v does not exist, creating it with defaults", configFilePath)
		c.configFileContent = []byte("{}")
		return c, nil
	}
	if err != nil {
		return nil, err
	}

	if c.yaml {
		c.configFileContent, err = yamlToJSON(byteValue)
		if err != nil {
			return nil, fmt.Errorf("cannot parse config file %v: %w", configFilePath, err)
		}
		return c, nil
	}
	if len(strings.TrimSpace(string(byteValue))) == 0 {
		byteValue = []byte("{}")
	}
	if !json.Valid(byteValue) {
		return nil, fmt.Errorf("config file %v is not valid JSON", configFilePath)
	}
	c.configFileContent = byteValue
	return c, nil
}

// ReadSectionWithDefaults merges the section into configStruct and writes the defaults if the section is missing
func (c *ConfigReader) ReadSectionWithDefaults(sectionName string, configStruct interface{}) error {
	c.lck.Lock()
	defer c.lck.Unlock()

	newb, err := ReadSectionWithDefaults(c.configFileContent, sectionName, configStruct)
	if err != nil {
		return fmt.Errorf("cannot read section %v: %w", sectionName, err)
	}
	if len(newb) == 0 {
		return nil
	}
	c.configFileContent = newb
	return c.writeConfigFile()
}

func (c *ConfigReader) writeConfigFile() error {
	var out []byte
	var err error
	if c.yaml {
		out, err = jsonToYAML(c.configFileContent)
	} else {
		out, err = json.MarshalIndent(json.RawMessage(c.configFileContent), "", "  ")
	}
	if err != nil {
		return err
	}

	err = os.MkdirAll(filepath.Dir(c.configFilePath), 0o755)
	if err != nil {
		return err
	}
	err = os.WriteFile(c.configFilePath, out, 0o644)
	if err != nil {
		c.logger.Errorf("Cannot write config file %v: %v", c.configFilePath, err)
	}
	return err
}

func yamlToJSON(yamlBytes []byte) ([]byte, error) {
	sections := map[string]interface{}{}
	if err := yaml.Unmarshal(yamlBytes, &sections); err != nil {
		return nil, err
	}
	return json.Marshal(sections)
}

func jsonToYAML(jsonBytes []byte) ([]byte, error) {
	sections := map[string]interface{}{}
	if err := json.Unmarshal(jsonBytes, &sections); err != nil {
		return nil, err
	}
	return yaml.Marshal(sections)
}

// GetDefaultPath returns the path of the config file in the users config dir
func GetDefaultPath(productName string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, productName, "config.json")
}
