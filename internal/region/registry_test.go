package region_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/growth-logbook/backend/internal/domain"
	"github.com/pkordes/growth-logbook/backend/internal/region"
)

func TestDefault_ClosedSet(t *testing.T) {
	regions := region.Default().List()

	require.Len(t, regions, 34)

	counts := map[domain.RegionClass]int{}
	ids := map[domain.RegionID]bool{}
	for _, r := range regions {
		counts[r.Class]++
		assert.False(t, ids[r.ID], "duplicate id %q", r.ID)
		ids[r.ID] = true
		assert.Equal(t, domain.RegionID(r.DisplayName), r.ID)
	}
	assert.Equal(t, 4, counts[domain.ClassMunicipality])
	assert.Equal(t, 23, counts[domain.ClassProvince])
	assert.Equal(t, 5, counts[domain.ClassAutonomousRegion])
	assert.Equal(t, 2, counts[domain.ClassSAR])
}

func TestList_StableOrderAndCopy(t *testing.T) {
	reg := region.Default()

	first := reg.List()
	first[0].FullName = "mutated"

	second := reg.List()
	assert.Equal(t, "北京市", second[0].FullName, "List must return a copy")
	assert.Equal(t, "澳门特别行政区", second[len(second)-1].FullName)
}

// Every region resolves to the same identity from its long and short forms.
func TestResolve_FullAndDisplayNamesAgree(t *testing.T) {
	reg := region.Default()

	for _, r := range reg.List() {
		fromFull, ok := reg.Resolve(r.FullName)
		require.True(t, ok, r.FullName)
		fromShort, ok := reg.Resolve(r.DisplayName)
		require.True(t, ok, r.DisplayName)

		assert.Equal(t, r.ID, fromFull)
		assert.Equal(t, r.ID, fromShort)
	}
}

// Stripping a region's own suffix from its full name resolves to the same
// identity, including ethnic-qualified names such as 广西壮族自治区.
func TestResolve_SuffixStrippedFullName(t *testing.T) {
	reg := region.Default()

	for _, suffix := range region.Suffixes() {
		for _, r := range reg.List() {
			stem, ok := strings.CutSuffix(r.FullName, suffix)
			if !ok {
				continue
			}
			want, _ := reg.Resolve(r.FullName)
			got, ok := reg.Resolve(stem)
			require.True(t, ok, "stem %q of %q", stem, r.FullName)
			assert.Equal(t, want, got, "stem %q", stem)
		}
	}
}

func TestResolve_Cases(t *testing.T) {
	reg := region.Default()

	tests := []struct {
		label  string
		want   domain.RegionID
		wantOK bool
	}{
		{"北京市", "北京", true},
		{"北京", "北京", true},
		{"  上海市 ", "上海", true},
		{"内蒙古", "内蒙古", true},
		{"广西壮族", "广西", true},
		{"广西自治区", "广西", true},
		{"新疆维吾尔", "新疆", true},
		{"香港特别行政区", "香港", true},
		{"黑龙江省", "黑龙江", true},
		{"not-a-region", "", false},
		{"", "", false},
		{"省", "", false},
		{"beijing", "", false},
		{"北", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.label, func(t *testing.T) {
			got, ok := reg.Resolve(tc.label)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

// A bare stem of a full name resolves even when it differs from the
// region's display name.
func TestResolve_BareStemOfFullName(t *testing.T) {
	reg := region.New([]domain.Region{
		{FullName: "测试省", DisplayName: "测试甲", Class: domain.ClassProvince},
	})

	got, ok := reg.Resolve("测试")

	require.True(t, ok)
	assert.Equal(t, domain.RegionID("测试甲"), got)
}

func TestIsValid_FullNamesOnly(t *testing.T) {
	reg := region.Default()

	assert.True(t, reg.IsValid("广东省"))
	assert.True(t, reg.IsValid("宁夏回族自治区"))
	assert.False(t, reg.IsValid("广东"), "short names are not valid write labels")
	assert.False(t, reg.IsValid("not-a-region"))
}

func TestLookupAndResolveRegion(t *testing.T) {
	reg := region.Default()

	r, ok := reg.ResolveRegion("澳门")
	require.True(t, ok)
	assert.Equal(t, "澳门特别行政区", r.FullName)
	assert.Equal(t, domain.ClassSAR, r.Class)

	_, ok = reg.Lookup("火星")
	assert.False(t, ok)
	_, ok = reg.ResolveRegion("火星")
	assert.False(t, ok)
}
