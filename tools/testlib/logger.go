// Copyright (c) 2016 - 2020 Sqreen. All Rights Reserved.
// Please refer to our terms for more information:
// https://www.sqreen.io/terms.html

package testlib

import (
	"fmt"

	"github.com/stretchr/testify/mock"
)

// LoggerMockup is a mockup of the leveled logger. Formatted calls are
// recorded with their formatted message.
type LoggerMockup struct {
	mock.Mock
}

func (l *LoggerMockup) Debug(v ...interface{}) {
	l.Called(fmt.Sprint(v...))
}

func (l *LoggerMockup) Debugf(format string, v ...interface{}) {
	l.Called(fmt.Sprintf(format, v...))
}

func (l *LoggerMockup) Info(v ...interface{}) {
	l.Called(fmt.Sprint(v...))
}

func (l *LoggerMockup) Infof(format string, v ...interface{}) {
	l.Called(fmt.Sprintf(format, v...))
}

func (l *LoggerMockup) Error(err error) {
	l.Called(err)
}

func (l *LoggerMockup) ExpectDebug(msg interface{}) *mock.Call {
	return l.On("Debug", msg)
}

func (l *LoggerMockup) ExpectDebugf(msg interface{}) *mock.Call {
	return l.On("Debugf", msg)
}

func (l *LoggerMockup) ExpectInfof(msg interface{}) *mock.Call {
	return l.On("Infof", msg)
}

func (l *LoggerMockup) ExpectError(err interface{}) *mock.Call {
	return l.On("Error", err)
}
