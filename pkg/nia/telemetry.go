package nia

import (
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/influxdata/influxdb-client-go/api"
	"github.com/influxdata/influxdb-client-go/api/write"
)

const (
	measurementConnect    = "nia.session.connect"
	measurementRead       = "nia.session.read"
	measurementDisconnect = "nia.session.disconnect"
)

// nopWriteAPI satisfies api.WriteAPI when no InfluxDB is configured.
type nopWriteAPI struct{}

var _ api.WriteAPI = nopWriteAPI{}

func (nopWriteAPI) WriteRecord(line string)        {}
func (nopWriteAPI) WritePoint(point *write.Point) {}
func (nopWriteAPI) Flush()                         {}
func (nopWriteAPI) Close()                         {}
func (nopWriteAPI) Errors() <-chan error           { return nil }

func (s *Session) writePoint(measurement string, fields map[string]interface{}) {
	s.writeAPI.WritePoint(influxdb2.NewPoint(measurement,
		map[string]string{
			"device": s.source.Name(),
		},
		fields,
		time.Now()))
}
