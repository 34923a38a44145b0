package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Telemetry is one sample reported by a controller.
type Telemetry struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ControllerID   string             `bson:"controller_id" json:"controller_id"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
	ServoPowerTime int                `bson:"servo_power_time" json:"servo_power_time"`
	AlarmCode      int                `bson:"alarm_code,omitempty" json:"alarm_code,omitempty"`
	AlarmMessage   string             `bson:"alarm_message,omitempty" json:"alarm_message,omitempty"`
	Torque         []float64          `bson:"torque,omitempty" json:"torque,omitempty"` // per axis, percent of rated
}

// HasAlarm reports whether the sample carries an active alarm.
func (t Telemetry) HasAlarm() bool {
	return t.AlarmCode != 0
}
