package vsts_test

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

func Test_Toggle(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Service endpoint toggle")
}
