package util

import (
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const MetricsIdFile = "metrics.id"

// MetricsId labels a directory of pool samples. Id is "<kind>.<version>"; Values carries the pool id under "pool".
//
type MetricsId struct {
	Id     string            `json:"id"`
	Values map[string]string `json:"values,omitempty"`
}

func NewPoolMetricsId(kind string, version int, pool string) *MetricsId {
	return &MetricsId{
		Id:     fmt.Sprintf("%s.%d", kind, version),
		Values: map[string]string{"pool": pool},
	}
}

func (self *MetricsId) Kind() string {
	if i := strings.LastIndex(self.Id, "."); i > 0 {
		return self.Id[:i]
	}
	return self.Id
}

func (self *MetricsId) Version() (int, error) {
	i := strings.LastIndex(self.Id, ".")
	if i < 1 {
		return 0, errors.Errorf("metrics id [%s] has no version", self.Id)
	}
	v, err := strconv.Atoi(self.Id[i+1:])
	if err != nil {
		return 0, errors.Wrapf(err, "invalid version in metrics id [%s]", self.Id)
	}
	return v, nil
}

func (self *MetricsId) Pool() string {
	return self.Values["pool"]
}

func (self *MetricsId) Write(outPath string) error {
	data, err := json.MarshalIndent(self, "", "  ")
	if err != nil {
		return errors.Wrap(err, "error encoding metrics id")
	}
	path := filepath.Join(outPath, MetricsIdFile)
	if err := ioutil.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, "error writing [%s]", path)
	}
	return nil
}

func ReadMetricsId(path string) (*MetricsId, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	metricsId := &MetricsId{}
	if err = json.Unmarshal(data, metricsId); err != nil {
		return nil, errors.Wrapf(err, "error decoding [%s]", path)
	}
	return metricsId, nil
}

// MetricsDir is a directory of samples found by DiscoverMetrics.
//
type MetricsDir struct {
	Path string
	Id   *MetricsId
}

// DiscoverMetrics walks root for directories whose metrics.id was written by kind. Directories of other kinds are
// skipped. Results are sorted by path.
//
func DiscoverMetrics(root, kind string) ([]*MetricsDir, error) {
	var dirs []*MetricsDir
	err := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() || filepath.Base(path) != MetricsIdFile {
			return nil
		}
		metricsId, err := ReadMetricsId(path)
		if err != nil {
			return errors.Wrapf(err, "error reading [%s]", path)
		}
		if metricsId.Kind() != kind {
			logrus.Debugf("skipping [%s] with metrics id [%s]", path, metricsId.Id)
			return nil
		}
		dirs = append(dirs, &MetricsDir{Path: filepath.Dir(path), Id: metricsId})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Path < dirs[j].Path })
	return dirs, nil
}
