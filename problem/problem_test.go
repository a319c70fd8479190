package problem

import (
	"errors"
	"testing"

	check "gopkg.in/check.v1"
)

// Hook up gocheck into the "go test" runner.
func Test(t *testing.T) { check.TestingT(t) }

type ListTest struct{}

var _ = check.Suite(&ListTest{})

var errBase = errors.New("base")

func (s *ListTest) TestEmpty(c *check.C) {
	var p List
	c.Assert(p.Any(), check.Equals, false)
	c.Assert(p.Errors(), check.HasLen, 0)
	c.Assert(p.Err(), check.IsNil)
}

func (s *ListTest) TestAdd(c *check.C) {
	var p List
	p.Add("subnet %q: %w", "TestSubnet", errBase).Add("vpc: name is required")

	c.Assert(p.Any(), check.Equals, true)
	c.Assert(p.Errors(), check.HasLen, 2)
	c.Assert(p.Errors()[0], check.ErrorMatches, `subnet "TestSubnet": base`)
	c.Assert(p.Err(), check.ErrorMatches, "subnet \"TestSubnet\": base\nvpc: name is required")
	c.Assert(errors.Is(p.Err(), errBase), check.Equals, true)
}
