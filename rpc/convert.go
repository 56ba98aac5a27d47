package rpc

import (
	"fmt"
	"time"

	"github.com/imagvfx/awful"
	"google.golang.org/protobuf/types/known/structpb"
)

// specToStruct converts a job spec to a wire message.
func specToStruct(spec awful.JobSpec) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			"name":     structpb.NewStringValue(spec.Name),
			"command":  structpb.NewStringValue(spec.Command),
			"procs":    structpb.NewNumberValue(float64(spec.Procs)),
			"dir":      structpb.NewStringValue(spec.Dir),
			"combine":  structpb.NewBoolValue(spec.Combine),
			"parallel": structpb.NewBoolValue(spec.Parallel),
		},
	}
}

// structToSpec converts a wire message to a job spec.
// Missing fields are left as zero values.
func structToSpec(s *structpb.Struct) (awful.JobSpec, error) {
	f := fields{s}
	spec := awful.JobSpec{}
	var err error
	if spec.Name, err = f.String("name"); err != nil {
		return awful.JobSpec{}, err
	}
	if spec.Command, err = f.String("command"); err != nil {
		return awful.JobSpec{}, err
	}
	if spec.Procs, err = f.Int("procs"); err != nil {
		return awful.JobSpec{}, err
	}
	if spec.Dir, err = f.String("dir"); err != nil {
		return awful.JobSpec{}, err
	}
	if spec.Combine, err = f.Bool("combine"); err != nil {
		return awful.JobSpec{}, err
	}
	if spec.Parallel, err = f.Bool("parallel"); err != nil {
		return awful.JobSpec{}, err
	}
	return spec, nil
}

// infoToValue converts a job snapshot to a wire message.
// Times are RFC3339 strings, empty when not set.
func infoToValue(info awful.JobInfo) *structpb.Value {
	return structpb.NewStructValue(&structpb.Struct{
		Fields: map[string]*structpb.Value{
			"id":       structpb.NewStringValue(string(info.ID)),
			"name":     structpb.NewStringValue(info.Name),
			"command":  structpb.NewStringValue(info.Command),
			"procs":    structpb.NewNumberValue(float64(info.Procs)),
			"dir":      structpb.NewStringValue(info.Dir),
			"combine":  structpb.NewBoolValue(info.Combine),
			"parallel": structpb.NewBoolValue(info.Parallel),
			"stdout":   structpb.NewStringValue(info.Stdout),
			"stderr":   structpb.NewStringValue(info.Stderr),
			"status":   structpb.NewStringValue(info.Status.String()),
			"started":  structpb.NewStringValue(formatTime(info.Started)),
			"finished": structpb.NewStringValue(formatTime(info.Finished)),
		},
	})
}

// valueToInfo converts a wire message to a job snapshot.
func valueToInfo(v *structpb.Value) (awful.JobInfo, error) {
	s := v.GetStructValue()
	if s == nil {
		return awful.JobInfo{}, fmt.Errorf("job info should be a struct: %v", v)
	}
	f := fields{s}
	info := awful.JobInfo{}
	id, err := f.String("id")
	if err != nil {
		return awful.JobInfo{}, err
	}
	info.ID = awful.JobID(id)
	for key, p := range map[string]*string{
		"name":    &info.Name,
		"command": &info.Command,
		"dir":     &info.Dir,
		"stdout":  &info.Stdout,
		"stderr":  &info.Stderr,
	} {
		if *p, err = f.String(key); err != nil {
			return awful.JobInfo{}, err
		}
	}
	if info.Procs, err = f.Int("procs"); err != nil {
		return awful.JobInfo{}, err
	}
	if info.Combine, err = f.Bool("combine"); err != nil {
		return awful.JobInfo{}, err
	}
	if info.Parallel, err = f.Bool("parallel"); err != nil {
		return awful.JobInfo{}, err
	}
	status, err := f.String("status")
	if err != nil {
		return awful.JobInfo{}, err
	}
	if info.Status, err = awful.ParseJobStatus(status); err != nil {
		return awful.JobInfo{}, err
	}
	for key, p := range map[string]*time.Time{
		"started":  &info.Started,
		"finished": &info.Finished,
	} {
		s, err := f.String(key)
		if err != nil {
			return awful.JobInfo{}, err
		}
		if *p, err = parseTime(s); err != nil {
			return awful.JobInfo{}, fmt.Errorf("%v: %w", key, err)
		}
	}
	return info, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.Local(), nil
}

// fields reads typed fields of a struct message.
type fields struct {
	s *structpb.Struct
}

func (f fields) String(key string) (string, error) {
	v, ok := f.s.GetFields()[key]
	if !ok {
		return "", nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%v should be a string: %v", key, v)
	}
	return s.StringValue, nil
}

func (f fields) Int(key string) (int, error) {
	v, ok := f.s.GetFields()[key]
	if !ok {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%v should be a number: %v", key, v)
	}
	if n.NumberValue != float64(int(n.NumberValue)) {
		return 0, fmt.Errorf("%v should be an integer: %v", key, n.NumberValue)
	}
	return int(n.NumberValue), nil
}

func (f fields) Bool(key string) (bool, error) {
	v, ok := f.s.GetFields()[key]
	if !ok {
		return false, nil
	}
	b, ok := v.GetKind().(*structpb.Value_BoolValue)
	if !ok {
		return false, fmt.Errorf("%v should be a bool: %v", key, v)
	}
	return b.BoolValue, nil
}
