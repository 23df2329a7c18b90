package config

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"

	"github.com/nrfboot/boardcfg/pinnum"
)

var (
	pinIDType = reflect.TypeOf(pinnum.PinID(0))
	levelType = reflect.TypeOf(gpio.Low)
	pullType  = reflect.TypeOf(gpio.Float)
)

// decodeBoardFile maps the loosely typed document onto a BoardFile. Pins, levels and
// pulls may be written as strings; USB ids, brightness and versions may be hex strings.
// Plain numbers must fit the field they land in.
func decodeBoardFile(doc map[string]interface{}, out *BoardFile) error {
	delete(doc, "$schema")
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:     "json",
		Result:      out,
		ErrorUnused: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			stringToPinIDHook,
			stringToLevelHook,
			stringToPullHook,
			stringToUintHook,
			numberRangeHook,
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(doc)
}

func stringToPinIDHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != pinIDType {
		return data, nil
	}
	return pinnum.Parse(data.(string))
}

func stringToLevelHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != levelType {
		return data, nil
	}
	switch strings.ToLower(strings.TrimSpace(data.(string))) {
	case "high":
		return gpio.High, nil
	case "low":
		return gpio.Low, nil
	default:
		return nil, errors.Errorf("invalid active_state %q (want high or low)", data)
	}
}

func stringToPullHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String || to != pullType {
		return data, nil
	}
	switch strings.ToLower(strings.TrimSpace(data.(string))) {
	case "up", "pullup":
		return gpio.PullUp, nil
	case "down", "pulldown":
		return gpio.PullDown, nil
	case "none", "float":
		return gpio.Float, nil
	default:
		return nil, errors.Errorf("invalid pull %q (want up, down or none)", data)
	}
}

// stringToUintHook accepts "0x239A" style ids for unsigned fields.
func stringToUintHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	var bits int
	switch to.Kind() {
	case reflect.Uint16:
		bits = 16
	case reflect.Uint32:
		bits = 32
	default:
		return data, nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(data.(string)), 0, bits)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid %s value %q", to.Name(), data)
	}
	return reflect.ValueOf(n).Convert(to).Interface(), nil
}

// numberRangeHook rejects JSON numbers that would otherwise be truncated or wrapped on
// their way into an integer field.
func numberRangeHook(from, to reflect.Type, data interface{}) (interface{}, error) {
	var f float64
	switch from.Kind() {
	case reflect.Float32, reflect.Float64:
		f = reflect.ValueOf(data).Float()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		f = float64(reflect.ValueOf(data).Int())
	default:
		return data, nil
	}

	var low, high float64
	switch to.Kind() {
	case reflect.Uint8:
		high = math.MaxUint8
	case reflect.Uint16:
		high = math.MaxUint16
	case reflect.Uint32:
		high = math.MaxUint32
	case reflect.Int:
		low, high = math.MinInt32, math.MaxInt32
	default:
		return data, nil
	}
	if f != math.Trunc(f) {
		return nil, errors.Errorf("%s value %s is not a whole number", to.Name(), strconv.FormatFloat(f, 'f', -1, 64))
	}
	if f < low || f > high {
		return nil, errors.Errorf("%s value %s out of range", to.Name(), strconv.FormatFloat(f, 'f', -1, 64))
	}
	if to.Kind() == reflect.Int {
		return reflect.ValueOf(int64(f)).Convert(to).Interface(), nil
	}
	return reflect.ValueOf(uint64(f)).Convert(to).Interface(), nil
}
