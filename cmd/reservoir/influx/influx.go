package influx

import (
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	pool "github.com/openziti/reservoir"
	"github.com/openziti/reservoir/cmd/reservoir/reservoir"
	"github.com/openziti/reservoir/util"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"os"
	"path/filepath"
	"time"
)

func init() {
	influxCmd.Flags().StringVar(&influxDbUrl, "url", "http://localhost:8086", "InfluxDB URL")
	influxCmd.Flags().StringVar(&influxDbToken, "token", "", "InfluxDB auth token")
	influxCmd.Flags().StringVar(&influxDbOrg, "org", "", "InfluxDB organization")
	influxCmd.Flags().StringVar(&influxDbBucket, "bucket", "reservoir", "InfluxDB bucket")
	reservoir.RootCmd.AddCommand(influxCmd)
}

var influxCmd = &cobra.Command{
	Use:   "influx <metricsRoot>",
	Short: "Load pool metrics into InfluxDB",
	Args:  cobra.ExactArgs(1),
	Run:   influx,
}
var influxDbUrl string
var influxDbToken string
var influxDbOrg string
var influxDbBucket string

func influx(_ *cobra.Command, args []string) {
	dirs, err := util.DiscoverMetrics(args[0], pool.MetricsKind)
	if err != nil {
		logrus.Fatalf("error discovering metrics in [%s] (%v)", args[0], err)
	}
	logrus.Infof("discovered [%d] metrics directories", len(dirs))

	client := influxdb2.NewClient(influxDbUrl, influxDbToken)
	defer client.Close()
	writeApi := client.WriteAPI(influxDbOrg, influxDbBucket)

	for _, dir := range dirs {
		path := dir.Path
		poolId := dir.Id.Pool()
		for _, dataset := range pool.Datasets {
			datasetPath := filepath.Join(path, dataset+".csv")
			if _, err := os.Stat(datasetPath); os.IsNotExist(err) {
				continue
			}
			data, err := util.ReadSamples(datasetPath)
			if err != nil {
				logrus.Fatalf("error reading dataset [%s] (%v)", datasetPath, err)
			}
			for ts, v := range data {
				p := influxdb2.NewPoint(dataset, nil, map[string]interface{}{"v": v}, time.Unix(0, ts)).AddTag("pool", poolId)
				writeApi.WritePoint(p)
			}
			logrus.Infof("wrote [%d] points for pool [%s] dataset [%s]", len(data), poolId, dataset)
		}
	}
	writeApi.Flush()
}
