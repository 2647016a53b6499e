package configuration

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodsetu_otp_requests_total",
		Help: "OTP codes requested, by purpose.",
	}, []string{"purpose"})

	OTPVerificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bloodsetu_otp_verifications_total",
		Help: "OTP verification attempts, by outcome.",
	}, []string{"outcome"})

	CampsSweptTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bloodsetu_camps_swept_total",
		Help: "Camps advanced to completed by the status sweep.",
	})
)
