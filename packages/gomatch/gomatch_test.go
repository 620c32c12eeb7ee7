package gomatch

import (
	"testing"

	"github.com/abdul-hamid-achik/hitmatch/packages/matcher"
	"github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userJSON = `{"user":{"name":"Ann","age":30}}`

func TestGomegaAssertions(t *testing.T) {
	g := gomega.NewWithT(t)

	g.Expect(userJSON).To(HaveJSONKeyWithValue("user.name", "Ann"))
	g.Expect(userJSON).NotTo(HaveJSONKeyWithValue("user.name", "Bob"))
	g.Expect(userJSON).To(HaveJSONKey("user.age"))
	g.Expect(userJSON).NotTo(HaveJSONKey("user.email"))
	g.Expect(userJSON).To(BeValidJSON())
	g.Expect("nope").NotTo(BeValidJSON())
	g.Expect(5).To(RangeBetween(1, 10))
	g.Expect(15).NotTo(RangeBetween(1, 10))
	g.Expect(2.5).To(Named("rangeBetween", "1", 3))
}

func TestMatch_FailureMessages(t *testing.T) {
	m := RangeBetween(1, 10)

	ok, err := m.Match(15)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "the return value 15 should be in range 1-10", m.FailureMessage(15))

	ok, err = m.Match(5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "the return value 5 should not be in range 1-10", m.NegatedFailureMessage(5))
}

func TestMatch_MissingKeyMessage(t *testing.T) {
	m := HaveJSONKeyWithValue("user.email", "a@b.c")

	ok, err := m.Match(userJSON)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, `the return value should contain key "email" at level 2`, m.FailureMessage(userJSON))
}

func TestMatch_InvalidJSONFailsBothWays(t *testing.T) {
	m := HaveJSONKeyWithValue("a", 1)

	ok, err := m.Match("not json")
	assert.False(t, ok)
	assert.EqualError(t, err, "the return value should be valid json")
}

func TestMatch_NoMatcher(t *testing.T) {
	m := RangeBetween("low", 10)

	ok, err := m.Match(5)
	assert.False(t, ok)
	assert.ErrorIs(t, err, matcher.ErrNoMatcher)
	assert.Equal(t, "no matcher found for rangeBetween with 2 arguments", m.FailureMessage(5))
}

func TestNamedIn_CustomRegistry(t *testing.T) {
	r := matcher.NewRegistry(matcher.RangeBetween{})

	g := gomega.NewWithT(t)
	g.Expect(3).To(NamedIn(r, "rangeBetween", 1, 3))

	_, err := NamedIn(r, "beValidJson").Match(`{}`)
	assert.ErrorIs(t, err, matcher.ErrNoMatcher)
}
